package users

import "time"

// User is a back-office account. The password hash never leaves the process.
type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	Name         string `json:"name" gorm:"size:255;not null"`
	Username     string `json:"username" gorm:"size:64;not null"`
	Email        string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"column:password;size:255"`
	Role         Role   `json:"role" gorm:"size:16;not null"`
	Status       Status `json:"status" gorm:"size:16;not null"`
	Image        string `json:"image,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u User) Active() bool { return u.Status == StatusActive }

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleStaff Role = "Staff"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleStaff }

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) Valid() bool { return s == StatusActive || s == StatusInactive }
