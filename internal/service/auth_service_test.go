package service

import (
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

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:   "test-secret-key-0123456789abcdef",
			ExpireHours: 24,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{
				MinLength:     8,
				RequireNumber: true,
			},
		},
	}

	return NewAuthService(cfg, repository.NewUserRepository(db)), db
}

func createAuthTestUser(t *testing.T, svc *AuthService, db *gorm.DB, username, phone, password, role string) *models.User {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Name:         "Test " + username,
		Username:     username,
		Phone:        phone,
		Carrier:      "airtel",
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	hash, err := svc.HashPassword("sup3rsecret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "sup3rsecret" {
		t.Fatal("hash should not equal the plaintext")
	}
	if err := svc.VerifyPassword(hash, "sup3rsecret"); err != nil {
		t.Fatalf("verify should succeed: %v", err)
	}
	if err := svc.VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("verify should fail for a wrong password")
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	if err := svc.ValidatePassword("short1"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password for short input, got: %v", err)
	}
	if err := svc.ValidatePassword("nodigitshere"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password without digits, got: %v", err)
	}
	if err := svc.ValidatePassword("acceptable9"); err != nil {
		t.Fatalf("expected policy pass, got: %v", err)
	}
}

func TestGenerateAndParseJWT(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createAuthTestUser(t, svc, db, "admin", "9876543210", "secret123", constants.RoleAdmin)

	token, expiresAt, err := svc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if time.Until(expiresAt) < 23*time.Hour {
		t.Fatalf("expiry too early: %v", expiresAt)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "admin" || claims.Role != constants.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ParseJWT(token + "tampered"); err == nil {
		t.Fatal("tampered token should not parse")
	}
}

func TestLoginByUsernameAndPhone(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createAuthTestUser(t, svc, db, "parent_rao", "9876543210", "secret123", constants.RoleParent)

	got, token, _, err := svc.Login("parent_rao", "secret123")
	if err != nil {
		t.Fatalf("login by username failed: %v", err)
	}
	if got.ID != user.ID || token == "" {
		t.Fatalf("unexpected login result: id=%d token=%q", got.ID, token)
	}
	if got.LastLoginAt == nil {
		t.Fatal("last login timestamp not stamped")
	}

	got, _, _, err = svc.Login("9876543210", "secret123")
	if err != nil {
		t.Fatalf("login by phone failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("phone login resolved the wrong account: %d", got.ID)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createAuthTestUser(t, svc, db, "parent_rao", "9876543210", "secret123", constants.RoleParent)

	if _, _, _, err := svc.Login("parent_rao", "wrongpass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got: %v", err)
	}
	if _, _, _, err := svc.Login("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown account, got: %v", err)
	}
}

func TestRegisterParent(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, err := svc.RegisterParent(RegisterParentInput{
		Name:     "Meera Rao",
		Username: "meera",
		Phone:    "9876543210",
		Carrier:  "Airtel",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != constants.RoleParent {
		t.Fatalf("expected parent role, got %s", user.Role)
	}
	if user.Carrier != "airtel" {
		t.Fatalf("carrier should be normalized lowercase, got %s", user.Carrier)
	}

	if _, err := svc.RegisterParent(RegisterParentInput{
		Username: "meera",
		Phone:    "9000000000",
		Password: "secret123",
	}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected username taken, got: %v", err)
	}
	if _, err := svc.RegisterParent(RegisterParentInput{
		Username: "meera2",
		Phone:    "9876543210",
		Password: "secret123",
	}); !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected phone taken, got: %v", err)
	}
	if _, err := svc.RegisterParent(RegisterParentInput{
		Username: "meera3",
		Phone:    "9111111111",
		Password: "weak",
	}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got: %v", err)
	}
}

func TestRegisterAdmin(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, err := svc.RegisterAdmin(RegisterAdminInput{
		Name:     "Priya Nair",
		Username: "priya.nair",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != constants.RoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}

	if _, err := svc.RegisterAdmin(RegisterAdminInput{
		Username: "priya.nair",
		Password: "secret123",
	}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected username taken, got: %v", err)
	}
	if _, err := svc.RegisterAdmin(RegisterAdminInput{
		Password: "secret123",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected error without username, got: %v", err)
	}
	if _, err := svc.RegisterAdmin(RegisterAdminInput{
		Username: "second.admin",
		Password: "weak",
	}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got: %v", err)
	}
}

func TestRegisterParentUsernameFallsBackToPhone(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, err := svc.RegisterParent(RegisterParentInput{
		Name:     "Meera Rao",
		Phone:    "9876543210",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Username != "9876543210" {
		t.Fatalf("username should fall back to phone, got %s", user.Username)
	}

	if _, err := svc.RegisterParent(RegisterParentInput{Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected error without username and phone, got: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createAuthTestUser(t, svc, db, "parent_rao", "9876543210", "secret123", constants.RoleParent)

	if err := svc.ChangePassword(user.ID, "wrongpass1", "newsecret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got: %v", err)
	}
	if err := svc.ChangePassword(user.ID, "secret123", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got: %v", err)
	}
	if err := svc.ChangePassword(user.ID, "secret123", "newsecret1"); err != nil {
		t.Fatalf("change failed: %v", err)
	}

	if _, _, _, err := svc.Login("parent_rao", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got: %v", err)
	}
	if _, _, _, err := svc.Login("parent_rao", "newsecret1"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}

	if err := svc.ChangePassword(9999, "secret123", "newsecret1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got: %v", err)
	}
}
