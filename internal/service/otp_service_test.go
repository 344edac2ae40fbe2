package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/astra-preschool/internal/config"
	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// The cache is left uninitialized in tests, so codes take the database path.
func setupOtpServiceTest(t *testing.T) (*OtpService, *gorm.DB, *[]sentSMS) {
	t.Helper()

	dsn := fmt.Sprintf("file:otp_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.OtpCode{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		Security: config.SecurityConfig{
			OTP: config.OTPConfig{Length: 6, ExpireMinutes: 5},
		},
		SMS: config.SMSConfig{
			Enabled:    true,
			SchoolName: "Astra Preschool",
			Gateways:   map[string]string{"airtel": "airtelmail.com"},
		},
	}

	smsSvc := NewSMSService(&cfg.SMS)
	var sent []sentSMS
	smsSvc.send = func(to, body string) error {
		sent = append(sent, sentSMS{To: to, Body: body})
		return nil
	}

	svc := NewOtpService(cfg, repository.NewUserRepository(db), repository.NewOtpRepository(db), smsSvc)
	return svc, db, &sent
}

func createOtpTestParent(t *testing.T, db *gorm.DB, phone string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Meera Rao",
		Username: "parent_" + phone,
		Phone:    phone,
		Carrier:  "airtel",
		Role:     constants.RoleParent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func latestOtpCode(t *testing.T, db *gorm.DB, phone string) *models.OtpCode {
	t.Helper()
	var code models.OtpCode
	if err := db.Where("phone = ?", phone).Order("id desc").First(&code).Error; err != nil {
		t.Fatalf("failed to load otp code: %v", err)
	}
	return &code
}

func TestOtpSendStoresAndDelivers(t *testing.T) {
	svc, db, sent := setupOtpServiceTest(t)
	createOtpTestParent(t, db, "9876543210")

	if err := svc.Send(context.Background(), "9876543210"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	record := latestOtpCode(t, db, "9876543210")
	if len(record.Code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", record.Code)
	}
	if record.UsedAt != nil {
		t.Fatal("fresh code should be unredeemed")
	}
	if time.Until(record.ExpiresAt) <= 4*time.Minute {
		t.Fatalf("expiry too early: %v", record.ExpiresAt)
	}

	if len(*sent) != 1 {
		t.Fatalf("expected one sms, got %d", len(*sent))
	}
	if (*sent)[0].To != "9876543210@airtelmail.com" {
		t.Fatalf("unexpected recipient: %s", (*sent)[0].To)
	}
}

func TestOtpSendUnknownPhone(t *testing.T) {
	svc, _, _ := setupOtpServiceTest(t)
	if err := svc.Send(context.Background(), "9000000000"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got: %v", err)
	}
	if err := svc.Send(context.Background(), "  "); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found for blank phone, got: %v", err)
	}
}

func TestOtpVerifyRedeemsSingleUse(t *testing.T) {
	svc, db, _ := setupOtpServiceTest(t)
	user := createOtpTestParent(t, db, "9876543210")

	if err := svc.Send(context.Background(), "9876543210"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	code := latestOtpCode(t, db, "9876543210").Code

	got, err := svc.Verify(context.Background(), "9876543210", code)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("verify resolved the wrong account: %d", got.ID)
	}

	if _, err := svc.Verify(context.Background(), "9876543210", code); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("redeemed code should not verify again, got: %v", err)
	}
}

func TestOtpVerifyWrongCode(t *testing.T) {
	svc, db, _ := setupOtpServiceTest(t)
	createOtpTestParent(t, db, "9876543210")

	if err := svc.Send(context.Background(), "9876543210"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if _, err := svc.Verify(context.Background(), "9876543210", "000000x"); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("expected invalid code, got: %v", err)
	}
	if _, err := svc.Verify(context.Background(), "9000000000", "123456"); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("expected invalid for unknown phone, got: %v", err)
	}
	if _, err := svc.Verify(context.Background(), "9876543210", ""); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("expected invalid for blank code, got: %v", err)
	}
}

func TestOtpVerifyExpiredCode(t *testing.T) {
	svc, db, _ := setupOtpServiceTest(t)
	createOtpTestParent(t, db, "9876543210")

	record := &models.OtpCode{
		Phone:     "9876543210",
		Code:      "314159",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to seed code: %v", err)
	}

	if _, err := svc.Verify(context.Background(), "9876543210", "314159"); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("expired code should not verify, got: %v", err)
	}
}

func TestOtpPurgeExpired(t *testing.T) {
	svc, db, _ := setupOtpServiceTest(t)

	stale := &models.OtpCode{Phone: "9876543210", Code: "111111", ExpiresAt: time.Now().Add(-time.Hour)}
	fresh := &models.OtpCode{Phone: "9876543210", Code: "222222", ExpiresAt: time.Now().Add(time.Hour)}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("failed to seed stale code: %v", err)
	}
	if err := db.Create(fresh).Error; err != nil {
		t.Fatalf("failed to seed fresh code: %v", err)
	}

	purged, err := svc.PurgeExpired()
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected one purged code, got %d", purged)
	}

	var remaining int64
	if err := db.Model(&models.OtpCode{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected one remaining code, got %d", remaining)
	}
}

func TestGenerateCodeLength(t *testing.T) {
	svc, _, _ := setupOtpServiceTest(t)
	code, err := svc.GenerateCode()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in code: %q", code)
		}
	}
}
