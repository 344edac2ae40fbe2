package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/astra-preschool/internal/cache"
	"github.com/astra-preschool/internal/config"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/repository"
)

// OtpService issues and redeems one-time login codes for parents. Codes live
// in Redis when available, otherwise in the otp_codes table.
type OtpService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	otpRepo  repository.OtpRepository
	smsSvc   *SMSService
}

// NewOtpService creates the OTP service.
func NewOtpService(cfg *config.Config, userRepo repository.UserRepository, otpRepo repository.OtpRepository, smsSvc *SMSService) *OtpService {
	return &OtpService{
		cfg:      cfg,
		userRepo: userRepo,
		otpRepo:  otpRepo,
		smsSvc:   smsSvc,
	}
}

func (s *OtpService) codeLength() int {
	if s.cfg != nil && s.cfg.Security.OTP.Length > 0 {
		return s.cfg.Security.OTP.Length
	}
	return 6
}

func (s *OtpService) codeTTL() time.Duration {
	minutes := 5
	if s.cfg != nil && s.cfg.Security.OTP.ExpireMinutes > 0 {
		minutes = s.cfg.Security.OTP.ExpireMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// GenerateCode produces a random numeric code of the configured length.
func (s *OtpService) GenerateCode() (string, error) {
	length := s.codeLength()
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// Send generates a code for the phone's account and delivers it over SMS.
func (s *OtpService) Send(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrUserNotFound
	}
	user, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	code, err := s.GenerateCode()
	if err != nil {
		return err
	}
	ttl := s.codeTTL()

	if cache.Enabled() {
		if err := cache.SetJSON(ctx, cache.OtpKey(phone), code, ttl); err != nil {
			return err
		}
	} else {
		record := &models.OtpCode{
			Phone:     phone,
			Code:      code,
			ExpiresAt: time.Now().Add(ttl),
		}
		if err := s.otpRepo.Create(record); err != nil {
			return err
		}
	}

	if err := s.smsSvc.SendOtp(user, code, int(ttl.Minutes())); err != nil {
		logger.Warnw("otp_sms_send_failed",
			"user_id", user.ID,
			"error", err,
		)
		return ErrOtpSendUnavailable
	}

	logger.Infow("otp_sent", "user_id", user.ID)
	return nil
}

// Verify redeems a code and returns the matching account. Codes are single
// use; redemption removes them.
func (s *OtpService) Verify(ctx context.Context, phone, code string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if phone == "" || code == "" {
		return nil, ErrOtpInvalid
	}

	user, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrOtpInvalid
	}

	if cache.Enabled() {
		var stored string
		found, err := cache.GetJSON(ctx, cache.OtpKey(phone), &stored)
		if err != nil {
			return nil, err
		}
		if !found || stored != code {
			return nil, ErrOtpInvalid
		}
		if err := cache.Del(ctx, cache.OtpKey(phone)); err != nil {
			return nil, err
		}
		return user, nil
	}

	now := time.Now()
	record, err := s.otpRepo.GetLatestUsableByPhone(phone, now)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Code != code {
		return nil, ErrOtpInvalid
	}
	if err := s.otpRepo.MarkUsed(record.ID, now); err != nil {
		return nil, err
	}
	return user, nil
}

// PurgeExpired removes stale database-backed codes.
func (s *OtpService) PurgeExpired() (int64, error) {
	return s.otpRepo.DeleteExpired(time.Now())
}
