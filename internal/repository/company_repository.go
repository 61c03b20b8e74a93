package repository

import (
	"crm-backend/internal/model"

	"gorm.io/gorm"
)

type CompanyFilters struct {
	Search string
	Tags   []string
	Active bool
}

type CompanyRepository interface {
	List(filters CompanyFilters) ([]model.Company, error)
	FindByID(id uint) (*model.Company, error)
	Create(company *model.Company) error
	Update(company *model.Company) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db}
}

func (r *companyRepository) List(filters CompanyFilters) ([]model.Company, error) {
	query := r.db.Where("active = ?", filters.Active).Preload("Owner")

	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("name LIKE ? OR vat LIKE ?", like, like)
	}
	for _, tag := range filters.Tags {
		// JSON column; substring match is what the original did for tags.
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}

	var companies []model.Company
	err := query.Order("created_at desc").Find(&companies).Error
	return companies, err
}

func (r *companyRepository) FindByID(id uint) (*model.Company, error) {
	var company model.Company
	err := r.db.
		Preload("Owner").
		Preload("Contacts").
		Preload("Deals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(10)
		}).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(10)
		}).
		First(&company, id).Error
	return &company, err
}

func (r *companyRepository) Create(company *model.Company) error {
	return r.db.Create(company).Error
}

func (r *companyRepository) Update(company *model.Company) error {
	return r.db.Save(company).Error
}
