package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Tasks  []Task  `gorm:"foreignKey:OwnerID" json:"-"`
	Labels []Label `gorm:"foreignKey:OwnerID" json:"-"`
}
