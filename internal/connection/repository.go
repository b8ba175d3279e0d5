package connection

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"skillsync/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByPair returns the single record for the unordered pair, in any
// status and either direction, or nil when none exists.
func (r *Repository) FindByPair(a, b uint) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	err := r.db.Where("pair_key = ?", models.ConnectionPairKey(a, b)).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// Create inserts the request; the unique index on pair_key makes a
// concurrent duplicate fail as ErrConflict.
func (r *Repository) Create(req *models.ConnectionRequest) error {
	err := r.db.Create(req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: a request already exists for this pair", models.ErrConflict)
		}
		log.Printf("Error creating connection request %d -> %d: %v", req.SenderID, req.ReceiverID, err)
		return err
	}
	return nil
}

// UpdateStatusIfPending performs the conditional transition: the row must
// still be pending and addressed to receiverID. Zero rows affected means
// the request is missing, already terminal, or not the caller's to answer;
// all of those come back as (nil, nil).
func (r *Repository) UpdateStatusIfPending(requestID, receiverID uint, status models.ConnectionStatus) (*models.ConnectionRequest, error) {
	result := r.db.Model(&models.ConnectionRequest{}).
		Where("id = ? AND receiver_id = ? AND status = ?", requestID, receiverID, models.ConnectionPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var req models.ConnectionRequest
	if err := r.db.First(&req, requestID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListAcceptedPeers maps each accepted record to the other party, the way
// the connections page renders it.
func (r *Repository) ListAcceptedPeers(userID uint) ([]models.ConnectionPeer, error) {
	var peers []models.ConnectionPeer
	err := r.db.Raw(`
        SELECT u.id AS user_id, u.username, u.headline, u.avatar_ref, cr.updated_at AS connected_at
        FROM connection_requests cr
        JOIN users u ON u.id = CASE WHEN cr.sender_id = ? THEN cr.receiver_id ELSE cr.sender_id END
        WHERE cr.status = ? AND (cr.sender_id = ? OR cr.receiver_id = ?)
        ORDER BY cr.updated_at DESC
    `, userID, models.ConnectionAccepted, userID, userID).Scan(&peers).Error
	if err != nil {
		log.Printf("Error listing connections for user %d: %v", userID, err)
		return nil, err
	}
	return peers, nil
}

func (r *Repository) ListPendingForReceiver(userID uint) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	err := r.db.Where("receiver_id = ? AND status = ?", userID, models.ConnectionPending).
		Order("created_at desc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}
