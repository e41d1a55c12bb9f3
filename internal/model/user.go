package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role IDs form a closed enumeration carried in JWT claims and on the
// user row. They gate routing, not permissions tables.
const (
	RoleTravelAdministrator = 29187
	RoleTravelTeamMember    = 339458
	RoleManager             = 53019
	RoleBudgetChecker       = 60000
	RoleFinance             = 70001
	RoleRequester           = 401938
)

// User is the directory entity. This core reads it through the
// directory package; it is written only by auth/user management.
type User struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FullName    string       `gorm:"type:varchar(255);not null" json:"full_name"`
	Email       string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string       `gorm:"type:varchar(255);not null" json:"-"`
	Picture     string       `gorm:"type:text" json:"picture"`
	Location    string       `gorm:"type:varchar(255);index" json:"location"`
	Department  string       `gorm:"type:varchar(100)" json:"department"`
	ManagerName string       `gorm:"type:varchar(255)" json:"manager_name"`
	RoleID      int          `gorm:"not null;index" json:"role_id"`
	CenterID    *uuid.UUID   `gorm:"type:uuid;index" json:"center_id"`
	Center      *Center      `gorm:"foreignKey:CenterID" json:"center,omitempty"`
	Departments []Department `gorm:"many2many:department_users;" json:"departments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Department groups budget checkers. A request routes to the
// department whose name matches its own, case-insensitively.
type Department struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Users     []User    `gorm:"many2many:department_users;" json:"users,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Center is a canonical travel location. A free-text destination
// resolves to the center whose location it contains.
type Center struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Location  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Center) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
