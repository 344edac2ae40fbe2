package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupStudentServiceTest(t *testing.T) (*StudentService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:student_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	if err := db.AutoMigrate(&models.User{}, &models.Student{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewStudentService(repository.NewStudentRepository(db), repository.NewUserRepository(db)), db
}

func createStudentTestParent(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Parent " + username,
		Username: username,
		Role:     constants.RoleParent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create parent: %v", err)
	}
	return user
}

func TestCreateStudentAssignsSequentialCodes(t *testing.T) {
	svc, _ := setupStudentServiceTest(t)

	first, err := svc.Create(CreateStudentInput{
		Name:    "Aarav Sharma",
		Class:   constants.ClassNursery,
		Balance: decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.StudentCode != "AS1001" {
		t.Fatalf("expected AS1001, got %s", first.StudentCode)
	}
	if !first.FeePaid.IsZero() {
		t.Fatalf("new student should start with zero fee paid, got %s", first.FeePaid)
	}
	if first.Balance.String() != "5000.00" {
		t.Fatalf("unexpected balance: %s", first.Balance)
	}

	second, err := svc.Create(CreateStudentInput{
		Name:  "Diya Patel",
		Class: constants.ClassLKG,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.StudentCode != "AS1002" {
		t.Fatalf("expected AS1002, got %s", second.StudentCode)
	}
}

func TestCreateStudentCodeSurvivesDeletes(t *testing.T) {
	svc, _ := setupStudentServiceTest(t)

	first, err := svc.Create(CreateStudentInput{Name: "Aarav Sharma", Class: constants.ClassNursery})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Soft-deleted rows still count, so codes never repeat.
	second, err := svc.Create(CreateStudentInput{Name: "Diya Patel", Class: constants.ClassLKG})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.StudentCode != "AS1002" {
		t.Fatalf("expected AS1002 after delete, got %s", second.StudentCode)
	}
}

func TestCreateStudentInvalidClass(t *testing.T) {
	svc, _ := setupStudentServiceTest(t)

	if _, err := svc.Create(CreateStudentInput{Name: "Aarav", Class: "Grade 1"}); !errors.Is(err, ErrInvalidClass) {
		t.Fatalf("expected invalid class, got: %v", err)
	}
}

func TestCreateStudentUnknownParent(t *testing.T) {
	svc, _ := setupStudentServiceTest(t)

	missing := uint(42)
	if _, err := svc.Create(CreateStudentInput{
		Name:     "Aarav",
		Class:    constants.ClassNursery,
		ParentID: &missing,
	}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected unknown parent, got: %v", err)
	}
}

func TestUpdateStudentPartialFields(t *testing.T) {
	svc, db := setupStudentServiceTest(t)
	parent := createStudentTestParent(t, db, "parent_rao")

	student, err := svc.Create(CreateStudentInput{
		Name:     "Aarav Sharma",
		Class:    constants.ClassNursery,
		ParentID: &parent.ID,
		Address:  "12 MG Road",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newName := "Aarav S Sharma"
	newClass := constants.ClassLKG
	updated, err := svc.Update(student.ID, UpdateStudentInput{
		Name:  &newName,
		Class: &newClass,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != newName || updated.Class != newClass {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if updated.Address != "12 MG Road" {
		t.Fatalf("untouched field should survive, got %q", updated.Address)
	}
	if updated.ParentID == nil || *updated.ParentID != parent.ID {
		t.Fatal("parent link should survive a partial update")
	}

	badClass := "Grade 1"
	if _, err := svc.Update(student.ID, UpdateStudentInput{Class: &badClass}); !errors.Is(err, ErrInvalidClass) {
		t.Fatalf("expected invalid class, got: %v", err)
	}
}

func TestUpdateStudentUnlinksParent(t *testing.T) {
	svc, db := setupStudentServiceTest(t)
	parent := createStudentTestParent(t, db, "parent_rao")

	student, err := svc.Create(CreateStudentInput{
		Name:     "Aarav Sharma",
		Class:    constants.ClassNursery,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	zero := uint(0)
	updated, err := svc.Update(student.ID, UpdateStudentInput{ParentID: &zero})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ParentID != nil {
		t.Fatalf("parent should be unlinked, got %v", *updated.ParentID)
	}
}

func TestDeleteStudent(t *testing.T) {
	svc, _ := setupStudentServiceTest(t)

	student, err := svc.Create(CreateStudentInput{Name: "Aarav Sharma", Class: constants.ClassNursery})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(student.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(student.ID); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("deleted student should not resolve, got: %v", err)
	}
	if err := svc.Delete(student.ID); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("double delete should report not found, got: %v", err)
	}
}

func TestGetForActorScopesParents(t *testing.T) {
	svc, db := setupStudentServiceTest(t)
	parent := createStudentTestParent(t, db, "parent_rao")
	other := createStudentTestParent(t, db, "parent_iyer")

	student, err := svc.Create(CreateStudentInput{
		Name:     "Aarav Sharma",
		Class:    constants.ClassNursery,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.GetForActor(Actor{ID: parent.ID, Role: constants.RoleParent}, student.ID); err != nil {
		t.Fatalf("own parent should see the student: %v", err)
	}
	if _, err := svc.GetForActor(Actor{ID: other.ID, Role: constants.RoleParent}, student.ID); !errors.Is(err, ErrStudentForbidden) {
		t.Fatalf("other parent should be forbidden, got: %v", err)
	}
	if _, err := svc.GetForActor(Actor{ID: 1, Role: constants.RoleAdmin}, student.ID); err != nil {
		t.Fatalf("admin should see any student: %v", err)
	}
}

func TestListForcesParentScope(t *testing.T) {
	svc, db := setupStudentServiceTest(t)
	parent := createStudentTestParent(t, db, "parent_rao")
	other := createStudentTestParent(t, db, "parent_iyer")

	if _, err := svc.Create(CreateStudentInput{Name: "Aarav", Class: constants.ClassNursery, ParentID: &parent.ID}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(CreateStudentInput{Name: "Diya", Class: constants.ClassLKG, ParentID: &other.ID}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// A parent asking for someone else's children still only gets their own.
	students, total, err := svc.List(Actor{ID: parent.ID, Role: constants.RoleParent}, repository.StudentListFilter{ParentID: other.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(students) != 1 || students[0].Name != "Aarav" {
		t.Fatalf("parent scope not enforced: total=%d students=%+v", total, students)
	}

	_, total, err = svc.List(Actor{ID: 1, Role: constants.RoleAdmin}, repository.StudentListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("admin should see all students, got %d", total)
	}
}
