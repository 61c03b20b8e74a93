package repository

import (
	"crm-backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(activity *model.Activity) error
	ListForDeal(dealID uint, limit int) ([]model.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db}
}

func (r *activityRepository) Create(activity *model.Activity) error {
	return r.db.Create(activity).Error
}

func (r *activityRepository) ListForDeal(dealID uint, limit int) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.db.Where("deal_id = ?", dealID).
		Preload("User").
		Order("created_at desc").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
