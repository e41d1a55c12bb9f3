// Package directory is the read-only user directory consumed by the
// approval core: lookups by id, name and email, and the recipient
// resolution strategies the notification router composes (by role, by
// department membership, by destination center).
package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"travelhub/internal/model"
)

type Directory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByName(ctx context.Context, fullName string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByRole(ctx context.Context, roleID int) ([]model.User, error)
	FindByRoleAndLocation(ctx context.Context, roleID int, location string) ([]model.User, error)
	FindByDepartment(ctx context.Context, department string) ([]model.User, error)
	FindByDestinations(ctx context.Context, roleID int, destinations []string) ([]model.User, error)
	DepartmentsOf(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type gormDirectory struct {
	db *gorm.DB
}

func New(db *gorm.DB) Directory {
	return &gormDirectory{db: db}
}

func (d *gormDirectory) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *gormDirectory) FindByName(ctx context.Context, fullName string) (*model.User, error) {
	var user model.User
	err := d.db.WithContext(ctx).
		Where("LOWER(full_name) = ?", strings.ToLower(fullName)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *gormDirectory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *gormDirectory) FindByRole(ctx context.Context, roleID int) ([]model.User, error) {
	var users []model.User
	err := d.db.WithContext(ctx).Where("role_id = ?", roleID).Find(&users).Error
	return users, err
}

func (d *gormDirectory) FindByRoleAndLocation(ctx context.Context, roleID int, location string) ([]model.User, error) {
	var users []model.User
	err := d.db.WithContext(ctx).
		Where("role_id = ? AND LOWER(location) = ?", roleID, strings.ToLower(location)).
		Find(&users).Error
	return users, err
}

// FindByDepartment resolves the members of the department whose name
// matches case-insensitively. An unknown department yields no members,
// not an error.
func (d *gormDirectory) FindByDepartment(ctx context.Context, department string) ([]model.User, error) {
	var dept model.Department
	err := d.db.WithContext(ctx).
		Preload("Users").
		Where("LOWER(name) = ?", strings.ToLower(department)).
		First(&dept).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return dept.Users, nil
}

// FindByDestinations resolves users of a role stationed at the centers
// the destination strings refer to. A destination matches a center
// when it contains the center's location ("Nairobi, Kenya" contains
// "Kenya"). Unresolvable destinations are skipped.
func (d *gormDirectory) FindByDestinations(ctx context.Context, roleID int, destinations []string) ([]model.User, error) {
	var centers []model.Center
	if err := d.db.WithContext(ctx).Find(&centers).Error; err != nil {
		return nil, err
	}

	centerIDs := make([]uuid.UUID, 0, len(centers))
	for _, center := range centers {
		if matchesAny(center.Location, destinations) {
			centerIDs = append(centerIDs, center.ID)
		}
	}
	if len(centerIDs) == 0 {
		return nil, nil
	}

	var users []model.User
	err := d.db.WithContext(ctx).
		Where("role_id = ? AND center_id IN ?", roleID, centerIDs).
		Find(&users).Error
	return users, err
}

func (d *gormDirectory) DepartmentsOf(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var user model.User
	err := d.db.WithContext(ctx).Preload("Departments").First(&user, "id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(user.Departments))
	for _, dept := range user.Departments {
		names = append(names, dept.Name)
	}
	return names, nil
}

func matchesAny(centerLocation string, destinations []string) bool {
	needle := strings.ToLower(centerLocation)
	for _, dest := range destinations {
		if strings.Contains(strings.ToLower(dest), needle) {
			return true
		}
	}
	return false
}
