package models

import "time"

// User is a platform account. Authentication is external; Cascade only
// consumes the resolved identity and role.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:128;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex" json:"email"`
	Role         string `gorm:"size:16;default:member;index" json:"role"`
	DepartmentID *uint  `gorm:"index" json:"department_id"`
	TeamID       *uint  `json:"team_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Department is an organizational unit with a single manager.
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	ManagerID uint      `gorm:"index" json:"manager_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Manager *User  `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Teams   []Team `gorm:"foreignKey:DepartmentID" json:"teams,omitempty"`
}

// Team is a group of members within one department.
type Team struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	DepartmentID uint      `gorm:"index" json:"department_id"`
	LeadID       *uint     `json:"lead_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Project is the top-level unit of work departments are invited to.
type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:16;default:active;index" json:"status"`
	CreatedByID uint       `json:"created_by_id"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
