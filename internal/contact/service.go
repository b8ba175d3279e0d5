package contact

import (
	"fmt"

	"skillsync/internal/models"
)

type Store interface {
	Create(contact *models.Contact) error
	List() ([]models.Contact, error)
	SetResolved(id uint, resolved bool) (*models.Contact, error)
	Delete(id uint) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Submit accepts a public contact-form message; no authentication required.
func (s *Service) Submit(name, email, subject, body string) (*models.Contact, error) {
	if name == "" || email == "" || body == "" {
		return nil, fmt.Errorf("%w: name, email and body are required", models.ErrInvalidArgument)
	}

	contact := &models.Contact{
		Name:    name,
		Email:   email,
		Subject: subject,
		Body:    body,
	}
	if err := s.store.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) List(principal models.Principal) ([]models.Contact, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return s.store.List()
}

func (s *Service) Resolve(principal models.Principal, id uint) (*models.Contact, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return s.store.SetResolved(id, true)
}

func (s *Service) Delete(principal models.Principal, id uint) error {
	if !principal.IsAdmin() {
		return fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return s.store.Delete(id)
}
