package message

import (
	"log"

	"gorm.io/gorm"

	"skillsync/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(msg *models.Message) error {
	err := r.db.Create(msg).Error
	if err != nil {
		log.Printf("Error creating message %d -> %d: %v", msg.SenderID, msg.ReceiverID, err)
		return err
	}
	return nil
}

// ListConversation returns the full two-way history between two users,
// oldest first.
func (r *Repository) ListConversation(a, b uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		a, b, b, a,
	).Order("created_at asc").Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListInbox returns the latest message per peer for the user.
func (r *Repository) ListInbox(userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Raw(`
        SELECT DISTINCT ON (peer_id) id, created_at, sender_id, receiver_id, body, read
        FROM (
            SELECT m.*, CASE WHEN m.sender_id = ? THEN m.receiver_id ELSE m.sender_id END AS peer_id
            FROM messages m
            WHERE m.sender_id = ? OR m.receiver_id = ?
        ) conv
        ORDER BY peer_id, created_at DESC
    `, userID, userID, userID).Scan(&msgs).Error
	if err != nil {
		log.Printf("Error listing inbox for user %d: %v", userID, err)
		return nil, err
	}
	return msgs, nil
}

// MarkRead flags everything the peer sent to the user as read.
func (r *Repository) MarkRead(userID, peerID uint) error {
	return r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", userID, peerID, false).
		Update("read", true).Error
}
