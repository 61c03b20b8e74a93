package repository

import (
	"crm-backend/internal/model"

	"gorm.io/gorm"
)

type ContactFilters struct {
	Search    string
	CompanyID uint
	Active    bool
}

type ContactRepository interface {
	List(filters ContactFilters) ([]model.Contact, error)
	FindByID(id uint) (*model.Contact, error)
	Create(contact *model.Contact) error
	Update(contact *model.Contact) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db}
}

func (r *contactRepository) List(filters ContactFilters) ([]model.Contact, error) {
	query := r.db.Where("active = ?", filters.Active).Preload("Company")

	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}
	if filters.CompanyID != 0 {
		query = query.Where("company_id = ?", filters.CompanyID)
	}

	var contacts []model.Contact
	err := query.Order("created_at desc").Find(&contacts).Error
	return contacts, err
}

func (r *contactRepository) FindByID(id uint) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.Preload("Company").First(&contact, id).Error
	return &contact, err
}

func (r *contactRepository) Create(contact *model.Contact) error {
	return r.db.Create(contact).Error
}

func (r *contactRepository) Update(contact *model.Contact) error {
	return r.db.Save(contact).Error
}
