package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/g-rown/UAct-BackEnd/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB connects to the Postgres instance named by TEST_DATABASE_URL
// and migrates a clean schema. Tests are skipped unless integration mode
// is enabled.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=uact_test port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	models := []interface{}{
		&model.User{},
		&model.StudentProfile{},
		&model.Program{},
		&model.ProgramApplication{},
		&model.ProgramDecision{},
		&model.ServiceLog{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	// Hard delete in FK order so each test starts clean
	for _, m := range []string{"service_logs", "program_decisions", "program_applications", "programs", "student_profiles", "users"} {
		if err := db.Exec("DELETE FROM " + m).Error; err != nil {
			t.Fatalf("Failed to clean table %s: %v", m, err)
		}
	}

	return db
}

func createTestStudent(t *testing.T, db *gorm.DB, email string) *model.StudentProfile {
	t.Helper()

	user := model.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test Student",
		Role:         model.RoleStudent,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	profile := model.StudentProfile{
		UserID:             user.ID,
		Course:             "BSCS",
		YearLevel:          "3",
		TotalRequiredHours: 40,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to create student profile: %v", err)
	}

	return &profile
}

func createTestProgram(t *testing.T, db *gorm.DB, slots, hours int, date time.Time) *model.Program {
	t.Helper()

	program := model.Program{
		Name:  fmt.Sprintf("Coastal Cleanup %d", time.Now().UnixNano()),
		Date:  date,
		Hours: hours,
		Slots: slots,
	}
	if err := db.Create(&program).Error; err != nil {
		t.Fatalf("Failed to create program: %v", err)
	}

	return &program
}

func TestSubmitApplicationCreatesServiceLog(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	student := createTestStudent(t, db, "alice@test.local")
	program := createTestProgram(t, db, 5, 8, time.Now().AddDate(0, 0, 7))

	app, err := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{
		ContactNumber: "09170000001",
	})
	if err != nil {
		t.Fatalf("SubmitApplication failed: %v", err)
	}

	var serviceLog model.ServiceLog
	if err := db.Where("application_id = ?", app.ID).First(&serviceLog).Error; err != nil {
		t.Fatalf("Service log was not created: %v", err)
	}
	if serviceLog.Status != model.FulfillmentPending {
		t.Errorf("future program should start pending, got %q", serviceLog.Status)
	}
	if serviceLog.Accepted || serviceLog.Approved {
		t.Error("new service log should be neither accepted nor approved")
	}

	status, err := svc.CurrentStatus(ctx, app.ID)
	if err != nil {
		t.Fatalf("CurrentStatus failed: %v", err)
	}
	if status != model.DecisionPending {
		t.Errorf("new application should be pending, got %q", status)
	}
}

func TestSubmitApplicationDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	student := createTestStudent(t, db, "bob@test.local")
	program := createTestProgram(t, db, 5, 8, time.Now().AddDate(0, 0, 7))

	if _, err := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{}); err != nil {
		t.Fatalf("First submission failed: %v", err)
	}

	_, err := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{})
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Errorf("second submission should fail with ErrDuplicateApplication, got %v", err)
	}

	var count int64
	db.Model(&model.ProgramApplication{}).
		Where("student_id = ? AND program_id = ?", student.ID, program.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 application, found %d", count)
	}
}

func TestSubmitApplicationFullProgram(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	program := createTestProgram(t, db, 1, 8, time.Now().AddDate(0, 0, 7))

	first := createTestStudent(t, db, "first@test.local")
	app, err := svc.SubmitApplication(ctx, first.ID, program.ID, SubmitInput{})
	if err != nil {
		t.Fatalf("First submission failed: %v", err)
	}

	admin := createTestAdmin(t, db)
	if _, err := svc.Decide(ctx, app.ID, admin.ID, model.DecisionApproved); err != nil {
		t.Fatalf("Approval failed: %v", err)
	}

	// The only seat is now reserved; the front door refuses new applicants
	second := createTestStudent(t, db, "second@test.local")
	_, err = svc.SubmitApplication(ctx, second.ID, program.ID, SubmitInput{})
	if !errors.Is(err, ErrProgramFull) {
		t.Errorf("submission to full program should fail with ErrProgramFull, got %v", err)
	}
}

func createTestAdmin(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	admin := model.User{
		Email:        fmt.Sprintf("admin%d@test.local", time.Now().UnixNano()),
		PasswordHash: "x",
		Name:         "Test Admin",
		Role:         model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return &admin
}

func TestDecideReservesSeat(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	student := createTestStudent(t, db, "carol@test.local")
	program := createTestProgram(t, db, 3, 8, time.Now().AddDate(0, 0, 7))
	admin := createTestAdmin(t, db)

	app, err := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{})
	if err != nil {
		t.Fatalf("SubmitApplication failed: %v", err)
	}

	// Submission alone never consumes a seat
	var fresh model.Program
	db.First(&fresh, program.ID)
	if fresh.SlotsTaken != 0 {
		t.Errorf("submission should not reserve a seat, slots_taken = %d", fresh.SlotsTaken)
	}

	decision, err := svc.Decide(ctx, app.ID, admin.ID, model.DecisionApproved)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if decision.Status != model.DecisionApproved {
		t.Errorf("decision status = %q, want approved", decision.Status)
	}

	db.First(&fresh, program.ID)
	if fresh.SlotsTaken != 1 {
		t.Errorf("approval should reserve one seat, slots_taken = %d", fresh.SlotsTaken)
	}

	var serviceLog model.ServiceLog
	db.Where("application_id = ?", app.ID).First(&serviceLog)
	if !serviceLog.Accepted {
		t.Error("approval should mark the service log accepted")
	}
}

func TestDecideRejectDoesNotReserveSeat(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	student := createTestStudent(t, db, "dan@test.local")
	program := createTestProgram(t, db, 3, 8, time.Now().AddDate(0, 0, 7))
	admin := createTestAdmin(t, db)

	app, _ := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{})
	if _, err := svc.Decide(ctx, app.ID, admin.ID, model.DecisionRejected); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	var fresh model.Program
	db.First(&fresh, program.ID)
	if fresh.SlotsTaken != 0 {
		t.Errorf("rejection should not reserve a seat, slots_taken = %d", fresh.SlotsTaken)
	}

	status, _ := svc.CurrentStatus(ctx, app.ID)
	if status != model.DecisionRejected {
		t.Errorf("CurrentStatus = %q, want rejected", status)
	}
}

func TestDecideAlreadyDecided(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	student := createTestStudent(t, db, "erin@test.local")
	program := createTestProgram(t, db, 3, 8, time.Now().AddDate(0, 0, 7))
	admin := createTestAdmin(t, db)

	app, _ := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{})
	if _, err := svc.Decide(ctx, app.ID, admin.ID, model.DecisionRejected); err != nil {
		t.Fatalf("First decision failed: %v", err)
	}

	_, err := svc.Decide(ctx, app.ID, admin.ID, model.DecisionApproved)
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second decision should fail with ErrAlreadyDecided, got %v", err)
	}

	var alreadyDecided *AlreadyDecidedError
	if !errors.As(err, &alreadyDecided) {
		t.Fatal("error should carry the existing status")
	}
	if alreadyDecided.Status != model.DecisionRejected {
		t.Errorf("existing status = %q, want rejected", alreadyDecided.Status)
	}

	// The failed second decision must leave no trace
	var count int64
	db.Model(&model.ProgramDecision{}).Where("application_id = ?", app.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 decision row, found %d", count)
	}
}

func TestConcurrentApprovalsLastSeat(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	program := createTestProgram(t, db, 1, 8, time.Now().AddDate(0, 0, 7))
	admin := createTestAdmin(t, db)

	var appIDs []uint
	for i := 0; i < 4; i++ {
		student := createTestStudent(t, db, fmt.Sprintf("race%d@test.local", i))
		app, err := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{})
		if err != nil {
			t.Fatalf("Submission %d failed: %v", i, err)
		}
		appIDs = append(appIDs, app.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(appIDs))
	for i, id := range appIDs {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = svc.Decide(ctx, id, admin.ID, model.DecisionApproved)
		}(i, id)
	}
	wg.Wait()

	approved := 0
	full := 0
	for _, err := range errs {
		switch {
		case err == nil:
			approved++
		case errors.Is(err, ErrProgramFull):
			full++
		default:
			t.Errorf("unexpected decision error: %v", err)
		}
	}

	if approved != 1 {
		t.Errorf("exactly one approval should win the last seat, got %d", approved)
	}
	if full != 3 {
		t.Errorf("expected 3 ErrProgramFull, got %d", full)
	}

	var fresh model.Program
	db.First(&fresh, program.ID)
	if fresh.SlotsTaken != 1 {
		t.Errorf("slots_taken = %d, want 1", fresh.SlotsTaken)
	}
}

func TestApproveServiceLogAccruesOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	student := createTestStudent(t, db, "frank@test.local")
	program := createTestProgram(t, db, 3, 8, time.Now().AddDate(0, 0, -1))
	admin := createTestAdmin(t, db)

	app, _ := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{})
	if _, err := svc.Decide(ctx, app.ID, admin.ID, model.DecisionApproved); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	var serviceLog model.ServiceLog
	db.Where("application_id = ?", app.ID).First(&serviceLog)

	approved, err := svc.ApproveServiceLog(ctx, serviceLog.ID, admin.ID)
	if err != nil {
		t.Fatalf("ApproveServiceLog failed: %v", err)
	}
	if !approved.Approved || approved.ApprovedAt == nil {
		t.Error("approved log should carry the approved flag and timestamp")
	}

	var profile model.StudentProfile
	db.First(&profile, student.ID)
	if profile.HoursCompleted != program.Hours {
		t.Errorf("hours_completed = %d, want %d", profile.HoursCompleted, program.Hours)
	}

	// A second approval must not double-credit
	_, err = svc.ApproveServiceLog(ctx, serviceLog.ID, admin.ID)
	if !errors.Is(err, ErrAlreadyApproved) {
		t.Errorf("second approval should fail with ErrAlreadyApproved, got %v", err)
	}

	db.First(&profile, student.ID)
	if profile.HoursCompleted != program.Hours {
		t.Errorf("hours accrued twice: hours_completed = %d, want %d",
			profile.HoursCompleted, program.Hours)
	}
}

func TestConcurrentAccreditation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	student := createTestStudent(t, db, "grace@test.local")
	program := createTestProgram(t, db, 3, 6, time.Now().AddDate(0, 0, -1))
	admin := createTestAdmin(t, db)

	app, _ := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{})
	svc.Decide(ctx, app.ID, admin.ID, model.DecisionApproved)

	var serviceLog model.ServiceLog
	db.Where("application_id = ?", app.ID).First(&serviceLog)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ApproveServiceLog(ctx, serviceLog.ID, admin.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrAlreadyApproved) {
			t.Errorf("unexpected accreditation error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("exactly one accreditation should succeed, got %d", succeeded)
	}

	var profile model.StudentProfile
	db.First(&profile, student.ID)
	if profile.HoursCompleted != program.Hours {
		t.Errorf("hours_completed = %d, want %d", profile.HoursCompleted, program.Hours)
	}
}

func TestGetServiceLogRefreshesStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	student := createTestStudent(t, db, "heidi@test.local")
	// Program in the past, but the stored status claims pending
	program := createTestProgram(t, db, 3, 8, time.Now().AddDate(0, 0, -3))

	app, _ := svc.SubmitApplication(ctx, student.ID, program.ID, SubmitInput{})

	var stale model.ServiceLog
	db.Where("application_id = ?", app.ID).First(&stale)
	db.Model(&stale).UpdateColumn("status", model.FulfillmentPending)

	refreshed, err := svc.GetServiceLog(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetServiceLog failed: %v", err)
	}
	if refreshed.Status != model.FulfillmentCompleted {
		t.Errorf("status = %q, want completed after refresh", refreshed.Status)
	}

	var stored model.ServiceLog
	db.First(&stored, stale.ID)
	if stored.Status != model.FulfillmentCompleted {
		t.Errorf("refreshed status was not persisted, stored = %q", stored.Status)
	}
}

// Full lifecycle: apply, approve, fill the program, complete, accredit.
func TestWorkflowEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWorkflowService(db)
	ctx := context.Background()

	program := createTestProgram(t, db, 1, 8, time.Now().AddDate(0, 0, -1))
	admin := createTestAdmin(t, db)

	studentA := createTestStudent(t, db, "a@test.local")
	appA, err := svc.SubmitApplication(ctx, studentA.ID, program.ID, SubmitInput{})
	if err != nil {
		t.Fatalf("Student A submission failed: %v", err)
	}

	if _, err := svc.Decide(ctx, appA.ID, admin.ID, model.DecisionApproved); err != nil {
		t.Fatalf("Student A approval failed: %v", err)
	}

	studentB := createTestStudent(t, db, "b@test.local")
	if _, err := svc.SubmitApplication(ctx, studentB.ID, program.ID, SubmitInput{}); !errors.Is(err, ErrProgramFull) {
		t.Fatalf("Student B should be refused with ErrProgramFull, got %v", err)
	}

	var serviceLog model.ServiceLog
	db.Where("application_id = ?", appA.ID).First(&serviceLog)

	refreshed, err := svc.GetServiceLog(ctx, serviceLog.ID)
	if err != nil {
		t.Fatalf("GetServiceLog failed: %v", err)
	}
	if refreshed.Status != model.FulfillmentCompleted {
		t.Fatalf("past program should read completed, got %q", refreshed.Status)
	}

	if _, err := svc.ApproveServiceLog(ctx, serviceLog.ID, admin.ID); err != nil {
		t.Fatalf("Accreditation failed: %v", err)
	}

	var profile model.StudentProfile
	db.First(&profile, studentA.ID)
	if profile.HoursCompleted != program.Hours {
		t.Errorf("hours_completed = %d, want %d", profile.HoursCompleted, program.Hours)
	}
	if got := profile.HoursRemaining(); got != profile.TotalRequiredHours-program.Hours {
		t.Errorf("HoursRemaining() = %d, want %d", got, profile.TotalRequiredHours-program.Hours)
	}
}
