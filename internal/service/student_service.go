package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/repository"

	"github.com/shopspring/decimal"
)

// StudentService manages enrollment records.
type StudentService struct {
	studentRepo repository.StudentRepository
	userRepo    repository.UserRepository
}

// NewStudentService creates the student service.
func NewStudentService(studentRepo repository.StudentRepository, userRepo repository.UserRepository) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		userRepo:    userRepo,
	}
}

// CreateStudentInput enrollment fields.
type CreateStudentInput struct {
	Name        string
	Class       string
	ParentID    *uint
	ParentName  string
	ParentPhone string
	Address     string
	DateOfBirth time.Time
	BloodGroup  string
	Allergies   string
	PhotoURL    string
	Balance     decimal.Decimal
	CreatedBy   uint
}

// Create enrolls a student, assigning a unique student code.
func (s *StudentService) Create(input CreateStudentInput) (*models.Student, error) {
	if !isValidClass(input.Class) {
		return nil, ErrInvalidClass
	}
	if input.ParentID != nil {
		parent, err := s.userRepo.GetByID(*input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrUserNotFound
		}
	}

	code, err := s.nextStudentCode()
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		StudentCode: code,
		Name:        strings.TrimSpace(input.Name),
		Class:       input.Class,
		FeePaid:     models.NewMoneyFromInt(0),
		Balance:     models.NewMoneyFromDecimal(input.Balance),
		ParentID:    input.ParentID,
		ParentName:  strings.TrimSpace(input.ParentName),
		ParentPhone: strings.TrimSpace(input.ParentPhone),
		Address:     strings.TrimSpace(input.Address),
		DateOfBirth: input.DateOfBirth,
		BloodGroup:  strings.TrimSpace(input.BloodGroup),
		Allergies:   strings.TrimSpace(input.Allergies),
		PhotoURL:    strings.TrimSpace(input.PhotoURL),
		EnrolledAt:  time.Now(),
		CreatedBy:   input.CreatedBy,
	}
	if err := s.studentRepo.Create(student); err != nil {
		return nil, err
	}

	logger.Infow("student_enrolled",
		"student_id", student.ID,
		"student_code", student.StudentCode,
		"class", student.Class,
	)
	return student, nil
}

// nextStudentCode assigns AS + zero-padded sequence. The unique index on
// student_code backstops races.
func (s *StudentService) nextStudentCode() (string, error) {
	count, err := s.studentRepo.CountAll()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", constants.StudentCodePrefix, count+1001), nil
}

// UpdateStudentInput mutable enrollment fields. Nil pointers leave the field
// unchanged.
type UpdateStudentInput struct {
	Name        *string
	Class       *string
	ParentID    *uint
	ParentName  *string
	ParentPhone *string
	Address     *string
	DateOfBirth *time.Time
	BloodGroup  *string
	Allergies   *string
	PhotoURL    *string
}

// Update edits an enrollment record. The fee cache fields are not editable
// here; only ledger transitions move them.
func (s *StudentService) Update(id uint, input UpdateStudentInput) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	if input.Name != nil {
		student.Name = strings.TrimSpace(*input.Name)
	}
	if input.Class != nil {
		if !isValidClass(*input.Class) {
			return nil, ErrInvalidClass
		}
		student.Class = *input.Class
	}
	if input.ParentID != nil {
		if *input.ParentID == 0 {
			student.ParentID = nil
		} else {
			parent, err := s.userRepo.GetByID(*input.ParentID)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				return nil, ErrUserNotFound
			}
			student.ParentID = input.ParentID
		}
	}
	if input.ParentName != nil {
		student.ParentName = strings.TrimSpace(*input.ParentName)
	}
	if input.ParentPhone != nil {
		student.ParentPhone = strings.TrimSpace(*input.ParentPhone)
	}
	if input.Address != nil {
		student.Address = strings.TrimSpace(*input.Address)
	}
	if input.DateOfBirth != nil {
		student.DateOfBirth = *input.DateOfBirth
	}
	if input.BloodGroup != nil {
		student.BloodGroup = strings.TrimSpace(*input.BloodGroup)
	}
	if input.Allergies != nil {
		student.Allergies = strings.TrimSpace(*input.Allergies)
	}
	if input.PhotoURL != nil {
		student.PhotoURL = strings.TrimSpace(*input.PhotoURL)
	}

	if err := s.studentRepo.Update(student); err != nil {
		return nil, err
	}
	return student, nil
}

// Delete removes an enrollment record. The payment ledger keeps its rows.
func (s *StudentService) Delete(id uint) error {
	student, err := s.studentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if student == nil {
		return ErrStudentNotFound
	}
	if err := s.studentRepo.Delete(id); err != nil {
		return err
	}
	logger.Infow("student_removed", "student_id", id, "student_code", student.StudentCode)
	return nil
}

// Get fetches one student without scoping. Admin operation.
func (s *StudentService) Get(id uint) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// GetForActor fetches one student, restricting parents to their own children.
func (s *StudentService) GetForActor(actor Actor, id uint) (*models.Student, error) {
	student, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if student.ParentID == nil || *student.ParentID != actor.ID {
			return nil, ErrStudentForbidden
		}
	}
	return student, nil
}

// List lists students. Parents are forced onto their own children.
func (s *StudentService) List(actor Actor, filter repository.StudentListFilter) ([]models.Student, int64, error) {
	if !actor.IsAdmin() {
		filter.ParentID = actor.ID
	}
	return s.studentRepo.List(filter)
}

// ListByParent lists a parent's children.
func (s *StudentService) ListByParent(parentID uint) ([]models.Student, error) {
	return s.studentRepo.ListByParentID(parentID)
}

func isValidClass(class string) bool {
	for _, c := range constants.StudentClasses {
		if c == class {
			return true
		}
	}
	return false
}
