package contact

import (
	"errors"
	"fmt"
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

func (r *Repository) Create(contact *models.Contact) error {
	err := r.db.Create(contact).Error
	if err != nil {
		log.Printf("Error creating contact message: %v", err)
		return err
	}
	return nil
}

func (r *Repository) List() ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.Order("created_at desc").Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *Repository) SetResolved(id uint, resolved bool) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.First(&contact, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact %d", models.ErrNotFound, id)
		}
		return nil, err
	}
	contact.Resolved = resolved
	if err := r.db.Save(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&models.Contact{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: contact %d", models.ErrNotFound, id)
	}
	return nil
}
