package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/g-rown/UAct-BackEnd/config"
)

// ReportStore runs the admin dashboard aggregates over a plain database/sql
// connection. Kept separate from the GORM store so reporting queries stay
// raw SQL.
type ReportStore struct {
	db *sql.DB
}

// StartReportStore opens a lib/pq connection for reporting queries
func StartReportStore() (*ReportStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST, getEnv.DB_PORT, getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD, getEnv.DB_NAME, getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		log.Println("Unable to open reporting connection:", err)
		return nil, err
	}

	return &ReportStore{db: db}, nil
}

// Close closes the reporting connection
func (s *ReportStore) Close() error {
	return s.db.Close()
}

// ProgramFillRate is one row of the capacity report
type ProgramFillRate struct {
	ProgramID   uint   `json:"program_id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Slots       int    `json:"slots"`
	SlotsTaken  int    `json:"slots_taken"`
	FillPercent int    `json:"fill_percent"`
}

// DashboardTotals aggregates the workflow state across the whole system
type DashboardTotals struct {
	Students         int64 `json:"students"`
	Programs         int64 `json:"programs"`
	Applications     int64 `json:"applications"`
	PendingDecisions int64 `json:"pending_decisions"`
	HoursAccredited  int64 `json:"hours_accredited"`
}

// GetDashboardTotals computes the headline numbers for the admin dashboard
func (s *ReportStore) GetDashboardTotals() (*DashboardTotals, error) {
	totals := &DashboardTotals{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM student_profiles WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM programs WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM program_applications WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM program_applications a
				WHERE a.deleted_at IS NULL
				AND NOT EXISTS (
					SELECT 1 FROM program_decisions d
					WHERE d.application_id = a.id
					AND d.deleted_at IS NULL
					AND d.status <> 'pending'
				)),
			(SELECT COALESCE(SUM(p.hours), 0)
				FROM service_logs l
				JOIN program_applications a ON a.id = l.application_id
				JOIN programs p ON p.id = a.program_id
				WHERE l.approved = TRUE AND l.deleted_at IS NULL);
	`

	err := s.db.QueryRow(query).Scan(
		&totals.Students,
		&totals.Programs,
		&totals.Applications,
		&totals.PendingDecisions,
		&totals.HoursAccredited,
	)
	if err != nil {
		return nil, err
	}

	return totals, nil
}

// GetProgramFillRates returns per-program seat consumption, fullest first
func (s *ReportStore) GetProgramFillRates(limit int) ([]ProgramFillRate, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, name, TO_CHAR(date, 'YYYY-MM-DD'), slots, slots_taken
		FROM programs
		WHERE deleted_at IS NULL
		ORDER BY
			CASE WHEN slots > 0 THEN slots_taken::float / slots ELSE 0 END DESC,
			date ASC
		LIMIT $1;
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := []ProgramFillRate{}
	for rows.Next() {
		var r ProgramFillRate
		if err := rows.Scan(&r.ProgramID, &r.Name, &r.Date, &r.Slots, &r.SlotsTaken); err != nil {
			return nil, err
		}
		if r.Slots > 0 {
			r.FillPercent = r.SlotsTaken * 100 / r.Slots
		}
		rates = append(rates, r)
	}

	return rates, rows.Err()
}

// GetHoursLeaderboard returns students ranked by accredited hours
func (s *ReportStore) GetHoursLeaderboard(limit int) ([]StudentHours, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT sp.id, u.name, sp.hours_completed, sp.total_required_hours
		FROM student_profiles sp
		JOIN users u ON u.id = sp.user_id
		WHERE sp.deleted_at IS NULL
		ORDER BY sp.hours_completed DESC, u.name ASC
		LIMIT $1;
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	board := []StudentHours{}
	for rows.Next() {
		var sh StudentHours
		if err := rows.Scan(&sh.StudentID, &sh.Name, &sh.HoursCompleted, &sh.TotalRequiredHours); err != nil {
			return nil, err
		}
		board = append(board, sh)
	}

	return board, rows.Err()
}

// StudentHours is one leaderboard row
type StudentHours struct {
	StudentID          uint   `json:"student_id"`
	Name               string `json:"name"`
	HoursCompleted     int    `json:"hours_completed"`
	TotalRequiredHours int    `json:"total_required_hours"`
}
