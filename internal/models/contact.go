package models

import "time"

// Contact is a message submitted through the public contact form,
// managed from the admin panel.
type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body" gorm:"not null"`
	Resolved  bool      `json:"resolved" gorm:"default:false"`
}
