package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/g-rown/UAct-BackEnd/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedAppSettings(); err != nil {
		return fmt.Errorf("failed to seed app settings: %w", err)
	}

	if err := s.SeedPrograms(); err != nil {
		return fmt.Errorf("failed to seed programs: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// SeedAdminUser creates the initial admin account if none exists
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin user already exists, skipping")
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@uact.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		log.Println("ADMIN_PASSWORD not set, using default (change it immediately)")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Community Service Admin",
		Role:         model.RoleAdmin,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded admin user %s", email)
	return nil
}

// SeedAppSettings inserts default settings, skipping keys that already exist
func (s *Seeder) SeedAppSettings() error {
	defaults := []model.AppSetting{
		{
			Key:         model.SettingDefaultRequiredHours,
			Value:       "40",
			Type:        "int",
			Description: "Required service hours assigned to new student profiles",
		},
	}

	for _, setting := range defaults {
		var existing model.AppSetting
		err := s.db.Where("key = ?", setting.Key).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return err
		}
	}

	return nil
}

// SeedPrograms inserts a handful of sample programs for development
func (s *Seeder) SeedPrograms() error {
	if os.Getenv("GO_ENV") == "production" {
		return nil
	}

	var count int64
	if err := s.db.Model(&model.Program{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Programs already exist, skipping sample data")
		return nil
	}

	nextMonth := time.Now().AddDate(0, 1, 0)
	programs := []model.Program{
		{
			Name:        "Coastal Cleanup Drive",
			Description: "Shoreline litter collection and waste segregation.",
			Location:    "Bayfront Park",
			Facilitator: "City Environment Office",
			Date:        nextMonth,
			TimeStart:   "07:00",
			TimeEnd:     "12:00",
			Hours:       5,
			Slots:       30,
		},
		{
			Name:        "Community Literacy Tutoring",
			Description: "Reading sessions for grade-school learners.",
			Location:    "Barangay Hall Annex",
			Facilitator: "Public Library",
			Date:        nextMonth.AddDate(0, 0, 7),
			TimeStart:   "09:00",
			TimeEnd:     "16:00",
			Hours:       7,
			Slots:       15,
		},
		{
			Name:        "Blood Donation Assist",
			Description: "Registration and donor assistance during the blood drive.",
			Location:    "Campus Gymnasium",
			Facilitator: "Red Cross Chapter",
			Date:        nextMonth.AddDate(0, 0, 14),
			TimeStart:   "08:00",
			TimeEnd:     "17:00",
			Hours:       8,
			Slots:       10,
		},
	}

	if err := s.db.Create(&programs).Error; err != nil {
		return err
	}

	log.Printf("Seeded %d sample programs", len(programs))
	return nil
}
