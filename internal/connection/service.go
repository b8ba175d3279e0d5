package connection

import (
	"fmt"
	"log"

	"skillsync/internal/models"
)

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Store is the persistence surface of the connection lifecycle.
type Store interface {
	FindByPair(a, b uint) (*models.ConnectionRequest, error)
	Create(req *models.ConnectionRequest) error
	UpdateStatusIfPending(requestID, receiverID uint, status models.ConnectionStatus) (*models.ConnectionRequest, error)
	ListAcceptedPeers(userID uint) ([]models.ConnectionPeer, error)
	ListPendingForReceiver(userID uint) ([]models.ConnectionRequest, error)
}

// UserDirectory resolves receiver identity and role for the eligibility gate.
type UserDirectory interface {
	GetUserByID(id uint) (*models.User, error)
}

// Notifier pushes request events to online receivers. May be nil.
type Notifier interface {
	SendToUser(userID uint, messageType string, data interface{})
}

type Service struct {
	store Store
	users UserDirectory
	hub   Notifier
}

func NewService(store Store, users UserDirectory, hub Notifier) *Service {
	return &Service{
		store: store,
		users: users,
		hub:   hub,
	}
}

// SendRequest creates the single pending record for a pair. A record in any
// status, in either direction, blocks a second one; re-requesting after
// rejection is not permitted.
func (s *Service) SendRequest(principal models.Principal, receiverID uint, message string) (*models.ConnectionRequest, error) {
	if principal.ID == receiverID {
		return nil, fmt.Errorf("%w: cannot send a connection request to yourself", models.ErrInvalidArgument)
	}

	receiver, err := s.users.GetUserByID(receiverID)
	if err != nil {
		return nil, err
	}
	if receiver.Role != models.RoleMember {
		return nil, fmt.Errorf("%w: user %d cannot receive connection requests", models.ErrInvalidArgument, receiverID)
	}

	existing, err := s.store.FindByPair(principal.ID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a request already exists for this pair", models.ErrConflict)
	}

	req := &models.ConnectionRequest{
		SenderID:   principal.ID,
		ReceiverID: receiverID,
		PairKey:    models.ConnectionPairKey(principal.ID, receiverID),
		Status:     models.ConnectionPending,
		Message:    message,
	}
	if err := s.store.Create(req); err != nil {
		// The pre-check raced with a concurrent create; the unique index
		// already reported it as a conflict.
		return nil, err
	}

	if s.hub != nil {
		s.hub.SendToUser(receiverID, "connection_request", map[string]interface{}{
			"request_id": req.ID,
			"sender_id":  req.SenderID,
			"message":    req.Message,
		})
	}

	return req, nil
}

// Respond applies the receiver's accept or reject decision. The transition
// is a conditional update: once a request leaves pending it can never be
// answered again, and a second respond call reports NotFound.
func (s *Service) Respond(principal models.Principal, requestID uint, decision Decision) (*models.ConnectionRequest, error) {
	var status models.ConnectionStatus
	switch decision {
	case DecisionAccept:
		status = models.ConnectionAccepted
	case DecisionReject:
		status = models.ConnectionRejected
	default:
		return nil, fmt.Errorf("%w: decision must be accept or reject", models.ErrInvalidArgument)
	}

	updated, err := s.store.UpdateStatusIfPending(requestID, principal.ID, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: no pending request %d for this user", models.ErrNotFound, requestID)
	}

	log.Printf("Connection request %d moved to %s by user %d", requestID, status, principal.ID)

	if s.hub != nil && status == models.ConnectionAccepted {
		s.hub.SendToUser(updated.SenderID, "connection_accepted", map[string]interface{}{
			"request_id": updated.ID,
			"user_id":    updated.ReceiverID,
		})
	}

	return updated, nil
}

// ListConnections returns the caller's accepted connections mapped to the
// other party.
func (s *Service) ListConnections(principal models.Principal) ([]models.ConnectionPeer, error) {
	return s.store.ListAcceptedPeers(principal.ID)
}

// ListIncoming returns the caller's pending inbox.
func (s *Service) ListIncoming(principal models.Principal) ([]models.ConnectionRequest, error) {
	return s.store.ListPendingForReceiver(principal.ID)
}

// CheckStatus reports the pair's state relative to the caller. Self-queries
// and unknown pairs are all-false, not errors.
func (s *Service) CheckStatus(principal models.Principal, otherID uint) (models.ConnectionInfo, error) {
	var info models.ConnectionInfo
	if principal.ID == otherID {
		return info, nil
	}

	req, err := s.store.FindByPair(principal.ID, otherID)
	if err != nil {
		return info, err
	}
	if req == nil {
		return info, nil
	}

	info.Connected = req.Status == models.ConnectionAccepted
	info.IsPending = req.Status == models.ConnectionPending
	info.IsSender = req.SenderID == principal.ID
	info.IsReceiver = req.ReceiverID == principal.ID
	return info, nil
}
