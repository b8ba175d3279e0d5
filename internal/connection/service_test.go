package connection_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"skillsync/internal/connection"
	"skillsync/internal/models"
)

type fakeStore struct {
	nextID uint
	byID   map[uint]*models.ConnectionRequest
	byPair map[string]*models.ConnectionRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:   make(map[uint]*models.ConnectionRequest),
		byPair: make(map[string]*models.ConnectionRequest),
	}
}

func (s *fakeStore) FindByPair(a, b uint) (*models.ConnectionRequest, error) {
	req, ok := s.byPair[models.ConnectionPairKey(a, b)]
	if !ok {
		return nil, nil
	}
	return req, nil
}

func (s *fakeStore) Create(req *models.ConnectionRequest) error {
	if _, exists := s.byPair[req.PairKey]; exists {
		return fmt.Errorf("%w: a request already exists for this pair", models.ErrConflict)
	}
	s.nextID++
	req.ID = s.nextID
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	s.byID[req.ID] = req
	s.byPair[req.PairKey] = req
	return nil
}

func (s *fakeStore) UpdateStatusIfPending(requestID, receiverID uint, status models.ConnectionStatus) (*models.ConnectionRequest, error) {
	req, ok := s.byID[requestID]
	if !ok || req.ReceiverID != receiverID || req.Status != models.ConnectionPending {
		return nil, nil
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return req, nil
}

func (s *fakeStore) ListAcceptedPeers(userID uint) ([]models.ConnectionPeer, error) {
	var peers []models.ConnectionPeer
	for _, req := range s.byID {
		if req.Status != models.ConnectionAccepted {
			continue
		}
		switch userID {
		case req.SenderID:
			peers = append(peers, models.ConnectionPeer{UserID: req.ReceiverID, ConnectedAt: req.UpdatedAt})
		case req.ReceiverID:
			peers = append(peers, models.ConnectionPeer{UserID: req.SenderID, ConnectedAt: req.UpdatedAt})
		}
	}
	return peers, nil
}

func (s *fakeStore) ListPendingForReceiver(userID uint) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	for _, req := range s.byID {
		if req.ReceiverID == userID && req.Status == models.ConnectionPending {
			reqs = append(reqs, *req)
		}
	}
	return reqs, nil
}

type fakeDirectory struct {
	users map[uint]*models.User
}

func (d *fakeDirectory) GetUserByID(id uint) (*models.User, error) {
	user, ok := d.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", models.ErrNotFound, id)
	}
	return user, nil
}

type recordingHub struct {
	events []string
}

func (h *recordingHub) SendToUser(userID uint, messageType string, data interface{}) {
	h.events = append(h.events, fmt.Sprintf("%d:%s", userID, messageType))
}

var (
	alice = models.Principal{ID: 1, Role: models.RoleMember}
	bob   = models.Principal{ID: 2, Role: models.RoleMember}
)

func newTestService() (*connection.Service, *fakeStore, *recordingHub) {
	store := newFakeStore()
	directory := &fakeDirectory{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice", Role: models.RoleMember},
		2: {ID: 2, Username: "bob", Role: models.RoleMember},
		3: {ID: 3, Username: "root", Role: models.RoleAdmin},
	}}
	hub := &recordingHub{}
	return connection.NewService(store, directory, hub), store, hub
}

func TestSendRequestToSelf(t *testing.T) {
	service, _, _ := newTestService()
	_, err := service.SendRequest(alice, alice.ID, "hi me")
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestSendRequestReceiverMissing(t *testing.T) {
	service, _, _ := newTestService()
	_, err := service.SendRequest(alice, 99, "hello")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSendRequestIneligibleReceiver(t *testing.T) {
	service, _, _ := newTestService()
	_, err := service.SendRequest(alice, 3, "hello admin")
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for admin target, got %v", err)
	}
}

func TestSendRequestCreatesPending(t *testing.T) {
	service, _, hub := newTestService()
	req, err := service.SendRequest(alice, bob.ID, "let's connect")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if req.Status != models.ConnectionPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req.SenderID != alice.ID || req.ReceiverID != bob.ID {
		t.Fatalf("unexpected parties: %+v", req)
	}
	if len(hub.events) != 1 || hub.events[0] != "2:connection_request" {
		t.Fatalf("expected receiver notification, got %v", hub.events)
	}
}

func TestSendRequestReverseDirectionConflict(t *testing.T) {
	service, _, _ := newTestService()
	if _, err := service.SendRequest(alice, bob.ID, "first"); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	_, err := service.SendRequest(bob, alice.ID, "second")
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict for reverse direction, got %v", err)
	}
}

func TestSendRequestAfterRejectionConflict(t *testing.T) {
	service, _, _ := newTestService()
	req, err := service.SendRequest(alice, bob.ID, "first")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := service.Respond(bob, req.ID, connection.DecisionReject); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// The unique pair record spans all statuses; no re-request after rejection.
	_, err = service.SendRequest(alice, bob.ID, "try again")
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict after rejection, got %v", err)
	}
}

func TestRespondAccept(t *testing.T) {
	service, _, hub := newTestService()
	req, _ := service.SendRequest(alice, bob.ID, "hello")

	updated, err := service.Respond(bob, req.ID, connection.DecisionAccept)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if updated.Status != models.ConnectionAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}
	// Sender gets notified of the acceptance.
	found := false
	for _, e := range hub.events {
		if e == "1:connection_accepted" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sender notification, got %v", hub.events)
	}
}

func TestRespondTerminalStateIsFinal(t *testing.T) {
	service, _, _ := newTestService()
	req, _ := service.SendRequest(alice, bob.ID, "hello")

	if _, err := service.Respond(bob, req.ID, connection.DecisionAccept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	_, err := service.Respond(bob, req.ID, connection.DecisionReject)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found after terminal state, got %v", err)
	}
}

func TestRespondOnlyReceiverMayAnswer(t *testing.T) {
	service, _, _ := newTestService()
	req, _ := service.SendRequest(alice, bob.ID, "hello")

	_, err := service.Respond(alice, req.ID, connection.DecisionAccept)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found for sender responding, got %v", err)
	}
}

func TestRespondInvalidDecision(t *testing.T) {
	service, _, _ := newTestService()
	req, _ := service.SendRequest(alice, bob.ID, "hello")

	_, err := service.Respond(bob, req.ID, connection.Decision("maybe"))
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestCheckStatusLifecycle(t *testing.T) {
	service, _, _ := newTestService()

	info, err := service.CheckStatus(alice, bob.ID)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if info.Connected || info.IsPending || info.IsSender || info.IsReceiver {
		t.Fatalf("expected all-false before any request, got %+v", info)
	}

	req, _ := service.SendRequest(alice, bob.ID, "hello")

	info, _ = service.CheckStatus(alice, bob.ID)
	if !info.IsPending || !info.IsSender || info.Connected {
		t.Fatalf("unexpected pending status for sender: %+v", info)
	}
	info, _ = service.CheckStatus(bob, alice.ID)
	if !info.IsPending || !info.IsReceiver || info.IsSender {
		t.Fatalf("unexpected pending status for receiver: %+v", info)
	}

	if _, err := service.Respond(bob, req.ID, connection.DecisionAccept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	info, _ = service.CheckStatus(alice, bob.ID)
	if !info.Connected || info.IsPending {
		t.Fatalf("expected connected after acceptance, got %+v", info)
	}
}

func TestCheckStatusSelf(t *testing.T) {
	service, _, _ := newTestService()
	info, err := service.CheckStatus(alice, alice.ID)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if info.Connected || info.IsPending || info.IsSender || info.IsReceiver {
		t.Fatalf("expected all-false for self query, got %+v", info)
	}
}

func TestListConnections(t *testing.T) {
	service, _, _ := newTestService()
	req, _ := service.SendRequest(alice, bob.ID, "hello")
	if _, err := service.Respond(bob, req.ID, connection.DecisionAccept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	peers, err := service.ListConnections(alice)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(peers) != 1 || peers[0].UserID != bob.ID {
		t.Fatalf("expected bob as alice's connection, got %+v", peers)
	}

	peers, _ = service.ListConnections(bob)
	if len(peers) != 1 || peers[0].UserID != alice.ID {
		t.Fatalf("expected alice as bob's connection, got %+v", peers)
	}
}

func TestListIncoming(t *testing.T) {
	service, _, _ := newTestService()
	if _, err := service.SendRequest(alice, bob.ID, "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	reqs, err := service.ListIncoming(bob)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(reqs) != 1 || reqs[0].SenderID != alice.ID {
		t.Fatalf("expected one pending request from alice, got %+v", reqs)
	}

	reqs, _ = service.ListIncoming(alice)
	if len(reqs) != 0 {
		t.Fatalf("sender must not see the request in their inbox, got %+v", reqs)
	}
}
