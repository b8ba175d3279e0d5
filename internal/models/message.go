package models

import "time"

type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"created_at"`
	SenderID   uint      `json:"sender_id" gorm:"not null;index"`
	ReceiverID uint      `json:"receiver_id" gorm:"not null;index"`
	Body       string    `json:"body" gorm:"not null"`
	Read       bool      `json:"read" gorm:"default:false"`
}
