package main

import (
	"os"
	"time"

	"github.com/astra-preschool/internal/config"
	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the default admin plus a few demo parents and students. Safe to run
// repeatedly; existing rows are left alone.
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}

	if err := models.InitDefaultAdmin(
		os.Getenv("ASTRA_DEFAULT_ADMIN_USERNAME"),
		os.Getenv("ASTRA_DEFAULT_ADMIN_PASSWORD"),
	); err != nil {
		stdLog.Fatalf("default admin init failed: %v", err)
	}

	parents := []models.User{
		{
			Name:     "Meera Rao",
			Username: "meera.rao",
			Phone:    "9876543210",
			Carrier:  "airtel",
			Role:     constants.RoleParent,
		},
		{
			Name:     "Vikram Iyer",
			Username: "vikram.iyer",
			Phone:    "9123456780",
			Carrier:  "jio",
			Role:     constants.RoleParent,
		},
	}

	parentIDs := map[string]uint{}
	for _, parent := range parents {
		var existing models.User
		err := models.DB.Where("username = ?", parent.Username).First(&existing).Error
		if err == nil {
			stdLog.Printf("parent already exists: %s", parent.Username)
			parentIDs[parent.Username] = existing.ID
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("parent123"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("password hash failed: %v", err)
		}
		parent.PasswordHash = string(hash)
		if err := models.DB.Create(&parent).Error; err != nil {
			stdLog.Printf("failed to create parent %s: %v", parent.Username, err)
			continue
		}
		stdLog.Printf("created parent: %s (password parent123)", parent.Username)
		parentIDs[parent.Username] = parent.ID
	}

	meeraID := parentIDs["meera.rao"]
	vikramID := parentIDs["vikram.iyer"]

	students := []models.Student{
		{
			StudentCode: "AS1001",
			Name:        "Aarav Sharma",
			Class:       constants.ClassNursery,
			FeePaid:     models.NewMoneyFromInt(0),
			Balance:     models.NewMoneyFromDecimal(decimal.NewFromInt(24000)),
			ParentID:    &meeraID,
			ParentName:  "Meera Rao",
			ParentPhone: "9876543210",
			DateOfBirth: time.Date(2022, time.March, 14, 0, 0, 0, 0, time.UTC),
			EnrolledAt:  time.Now(),
		},
		{
			StudentCode: "AS1002",
			Name:        "Diya Iyer",
			Class:       constants.ClassLKG,
			FeePaid:     models.NewMoneyFromInt(0),
			Balance:     models.NewMoneyFromDecimal(decimal.NewFromInt(30000)),
			ParentID:    &vikramID,
			ParentName:  "Vikram Iyer",
			ParentPhone: "9123456780",
			DateOfBirth: time.Date(2021, time.July, 2, 0, 0, 0, 0, time.UTC),
			EnrolledAt:  time.Now(),
		},
	}

	for _, student := range students {
		if student.ParentID != nil && *student.ParentID == 0 {
			student.ParentID = nil
		}
		var existing models.Student
		err := models.DB.Where("student_code = ?", student.StudentCode).First(&existing).Error
		if err == nil {
			stdLog.Printf("student already exists: %s", student.StudentCode)
			continue
		}
		if err := models.DB.Create(&student).Error; err != nil {
			stdLog.Printf("failed to create student %s: %v", student.StudentCode, err)
			continue
		}
		stdLog.Printf("created student: %s (%s)", student.StudentCode, student.Name)
	}

	stdLog.Printf("seed complete")
}
