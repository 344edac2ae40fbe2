package repository

import (
	"strings"
	"time"

	"github.com/astra-preschool/internal/models"

	"gorm.io/gorm"
)

// OtpRepository data access for one-time login codes.
type OtpRepository interface {
	Create(code *models.OtpCode) error
	GetLatestUsableByPhone(phone string, now time.Time) (*models.OtpCode, error)
	MarkUsed(id uint, now time.Time) error
	DeleteExpired(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormOtpRepository
}

// GormOtpRepository GORM implementation.
type GormOtpRepository struct {
	db *gorm.DB
}

// NewOtpRepository creates the OTP repository.
func NewOtpRepository(db *gorm.DB) *GormOtpRepository {
	return &GormOtpRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormOtpRepository) WithTx(tx *gorm.DB) *GormOtpRepository {
	if tx == nil {
		return r
	}
	return &GormOtpRepository{db: tx}
}

// Create stores a new code.
func (r *GormOtpRepository) Create(code *models.OtpCode) error {
	return r.db.Create(code).Error
}

// GetLatestUsableByPhone gets the newest unexpired, unredeemed code for a phone.
func (r *GormOtpRepository) GetLatestUsableByPhone(phone string, now time.Time) (*models.OtpCode, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	var code models.OtpCode
	result := r.db.
		Where("phone = ? AND used_at IS NULL AND expires_at > ?", phone, now).
		Order("id desc").Limit(1).Find(&code)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &code, nil
}

// MarkUsed marks a code redeemed.
func (r *GormOtpRepository) MarkUsed(id uint, now time.Time) error {
	return r.db.Model(&models.OtpCode{}).Where("id = ?", id).Update("used_at", now).Error
}

// DeleteExpired purges expired codes.
func (r *GormOtpRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Unscoped().Where("expires_at <= ?", now).Delete(&models.OtpCode{})
	return result.RowsAffected, result.Error
}
