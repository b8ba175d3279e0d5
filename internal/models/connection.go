package models

import (
	"fmt"
	"time"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// ConnectionRequest relates two users regardless of direction. PairKey
// normalizes the (sender, receiver) pair so the unique index rejects a
// second request for the same pair in either direction, in any status.
// Status only ever moves pending -> accepted or pending -> rejected.
type ConnectionRequest struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	SenderID   uint             `json:"sender_id" gorm:"not null;index"`
	ReceiverID uint             `json:"receiver_id" gorm:"not null;index"`
	PairKey    string           `json:"-" gorm:"uniqueIndex;not null"`
	Status     ConnectionStatus `json:"status" gorm:"default:pending"`
	Message    string           `json:"message"`
}

// ConnectionPairKey builds the order-independent key for two user ids.
func ConnectionPairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
