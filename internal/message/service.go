package message

import (
	"fmt"

	"skillsync/internal/models"
)

// Store is the persistence surface for direct messages.
type Store interface {
	Create(msg *models.Message) error
	ListConversation(a, b uint) ([]models.Message, error)
	ListInbox(userID uint) ([]models.Message, error)
	MarkRead(userID, peerID uint) error
}

// ConnectionChecker answers whether two users are connected; messaging is
// only allowed between accepted connections.
type ConnectionChecker interface {
	CheckStatus(principal models.Principal, otherID uint) (models.ConnectionInfo, error)
}

// Notifier pushes new-message events to online receivers. May be nil.
type Notifier interface {
	SendToUser(userID uint, messageType string, data interface{})
}

type Service struct {
	store       Store
	connections ConnectionChecker
	hub         Notifier
}

func NewService(store Store, connections ConnectionChecker, hub Notifier) *Service {
	return &Service{
		store:       store,
		connections: connections,
		hub:         hub,
	}
}

// Send delivers a direct message to a connected user.
func (s *Service) Send(principal models.Principal, receiverID uint, body string) (*models.Message, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: message body is required", models.ErrInvalidArgument)
	}
	if principal.ID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", models.ErrInvalidArgument)
	}

	info, err := s.connections.CheckStatus(principal, receiverID)
	if err != nil {
		return nil, err
	}
	if !info.Connected {
		return nil, fmt.Errorf("%w: users are not connected", models.ErrForbidden)
	}

	msg := &models.Message{
		SenderID:   principal.ID,
		ReceiverID: receiverID,
		Body:       body,
	}
	if err := s.store.Create(msg); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.SendToUser(receiverID, "new_message", msg)
	}

	return msg, nil
}

// Conversation returns the history with a peer and marks their messages read.
func (s *Service) Conversation(principal models.Principal, otherID uint) ([]models.Message, error) {
	msgs, err := s.store.ListConversation(principal.ID, otherID)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkRead(principal.ID, otherID); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Inbox returns the latest message per peer.
func (s *Service) Inbox(principal models.Principal) ([]models.Message, error) {
	return s.store.ListInbox(principal.ID)
}
