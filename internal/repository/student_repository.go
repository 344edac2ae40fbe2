package repository

import (
	"errors"
	"strings"

	"github.com/astra-preschool/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StudentRepository data access for enrolled students.
type StudentRepository interface {
	Create(student *models.Student) error
	Update(student *models.Student) error
	Delete(id uint) error
	GetByID(id uint) (*models.Student, error)
	GetByIDForUpdate(id uint) (*models.Student, error)
	GetByCode(code string) (*models.Student, error)
	ListByParentID(parentID uint) ([]models.Student, error)
	List(filter StudentListFilter) ([]models.Student, int64, error)
	CountAll() (int64, error)
	WithTx(tx *gorm.DB) *GormStudentRepository
}

// GormStudentRepository GORM implementation.
type GormStudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates the student repository.
func NewStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormStudentRepository) WithTx(tx *gorm.DB) *GormStudentRepository {
	if tx == nil {
		return r
	}
	return &GormStudentRepository{db: tx}
}

// Create creates a student record.
func (r *GormStudentRepository) Create(student *models.Student) error {
	return r.db.Create(student).Error
}

// Update saves a student record.
func (r *GormStudentRepository) Update(student *models.Student) error {
	return r.db.Save(student).Error
}

// Delete soft-deletes a student record.
func (r *GormStudentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Student{}, id).Error
}

// GetByID gets a student by ID.
func (r *GormStudentRepository) GetByID(id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

// GetByIDForUpdate gets a student by ID holding a row lock. Call inside a
// transaction before mutating the fee cache.
func (r *GormStudentRepository) GetByIDForUpdate(id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&student, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

// GetByCode gets a student by student code.
func (r *GormStudentRepository) GetByCode(code string) (*models.Student, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var student models.Student
	result := r.db.Where("student_code = ?", code).Limit(1).Find(&student)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &student, nil
}

// ListByParentID lists the students linked to a parent account.
func (r *GormStudentRepository) ListByParentID(parentID uint) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.Where("parent_id = ?", parentID).Order("id asc").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// List lists students with filters.
func (r *GormStudentRepository) List(filter StudentListFilter) ([]models.Student, int64, error) {
	query := r.db.Model(&models.Student{})

	if filter.Class != "" {
		query = query.Where("class = ?", filter.Class)
	}
	if filter.ParentID != 0 {
		query = query.Where("parent_id = ?", filter.ParentID)
	}
	if keyword := strings.TrimSpace(filter.Search); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR student_code LIKE ? OR parent_name LIKE ? OR parent_phone LIKE ?", like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var students []models.Student
	if err := query.Order("id desc").Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// CountAll counts all student records, soft-deleted included, for code
// sequence generation.
func (r *GormStudentRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Student{}).Count(&count).Error
	return count, err
}
