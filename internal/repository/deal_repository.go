package repository

import (
	"crm-backend/internal/model"
	"crm-backend/internal/policy"

	"gorm.io/gorm"
)

type DealFilters struct {
	Stage     string
	OwnerID   uint
	CompanyID uint
	Search    string
}

type DealRepository interface {
	List(filters DealFilters, scope policy.Scope) ([]model.Deal, error)
	FindByID(id uint) (*model.Deal, error)
	Create(deal *model.Deal) error
	Update(deal *model.Deal) error
	Delete(id uint) error
}

type dealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db}
}

func (r *dealRepository) List(filters DealFilters, scope policy.Scope) ([]model.Deal, error) {
	query := scope(r.db).
		Preload("Company").
		Preload("Contact").
		Preload("Owner")

	if filters.Stage != "" {
		query = query.Where("stage = ?", filters.Stage)
	}
	if filters.OwnerID != 0 {
		query = query.Where("owner_id = ?", filters.OwnerID)
	}
	if filters.CompanyID != 0 {
		query = query.Where("company_id = ?", filters.CompanyID)
	}
	if filters.Search != "" {
		query = query.Where("title LIKE ?", "%"+filters.Search+"%")
	}

	var deals []model.Deal
	err := query.Order("created_at desc").Find(&deals).Error
	return deals, err
}

func (r *dealRepository) FindByID(id uint) (*model.Deal, error) {
	var deal model.Deal
	err := r.db.
		Preload("Company").
		Preload("Contact").
		Preload("Owner").
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(20)
		}).
		Preload("Activities.User").
		First(&deal, id).Error
	return &deal, err
}

func (r *dealRepository) Create(deal *model.Deal) error {
	return r.db.Create(deal).Error
}

func (r *dealRepository) Update(deal *model.Deal) error {
	return r.db.Save(deal).Error
}

func (r *dealRepository) Delete(id uint) error {
	return r.db.Delete(&model.Deal{}, id).Error
}
