package service

import (
	"errors"
	"strings"
	"time"

	"github.com/astra-preschool/internal/config"
	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates credentials for admins and parents.
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewAuthService creates the auth service.
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// HashPassword hashes with bcrypt.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a bcrypt hash against a candidate.
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword checks the configured password policy.
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// JWTClaims token claims.
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT issues an HS256 token for an account.
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT validates and decodes a token.
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Login authenticates by username, email or phone plus password.
func (s *AuthService) Login(identifier, password string) (*models.User, string, time.Time, error) {
	user, err := s.userRepo.GetByLogin(identifier)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	return s.finishLogin(user)
}

// LoginUser issues a session for an already-verified account. The OTP flow
// calls this after code redemption.
func (s *AuthService) LoginUser(user *models.User) (*models.User, string, time.Time, error) {
	if user == nil {
		return nil, "", time.Time{}, ErrUserNotFound
	}
	return s.finishLogin(user)
}

func (s *AuthService) finishLogin(user *models.User) (*models.User, string, time.Time, error) {
	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}

	logger.Infow("user_login",
		"user_id", user.ID,
		"role", user.Role,
	)
	return user, token, expiresAt, nil
}

// RegisterParentInput new parent account fields.
type RegisterParentInput struct {
	Name     string
	Username string
	Email    string
	Phone    string
	Carrier  string
	Password string
}

// RegisterParent creates a parent account. Admin operation.
func (s *AuthService) RegisterParent(input RegisterParentInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = strings.TrimSpace(input.Phone)
	}
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		existing, err = s.userRepo.GetByPhone(phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrPhoneTaken
		}
	}

	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Carrier:      strings.ToLower(strings.TrimSpace(input.Carrier)),
		PasswordHash: hash,
		Role:         constants.RoleParent,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Infow("parent_account_created",
		"user_id", user.ID,
		"username", user.Username,
	)
	return user, nil
}

// RegisterAdminInput new admin account fields.
type RegisterAdminInput struct {
	Name     string
	Username string
	Email    string
	Phone    string
	Carrier  string
	Password string
}

// RegisterAdmin creates another administrator account. Admin operation; the
// new account starts unscoped until staff roles are assigned.
func (s *AuthService) RegisterAdmin(input RegisterAdminInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Carrier:      strings.ToLower(strings.TrimSpace(input.Carrier)),
		PasswordHash: hash,
		Role:         constants.RoleAdmin,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Infow("admin_account_created",
		"user_id", user.ID,
		"username", user.Username,
	)
	return user, nil
}

// GetUser fetches one account.
func (s *AuthService) GetUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers lists accounts with filters. Admin operation.
func (s *AuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// ChangePassword rotates an account password after verifying the old one.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.VerifyPassword(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	return s.userRepo.Update(user)
}
