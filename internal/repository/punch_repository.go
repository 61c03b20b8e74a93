package repository

import (
	"time"

	"crm-backend/internal/model"

	"gorm.io/gorm"
)

type PunchRepository interface {
	Create(punch *model.Punch) error
	FindByID(id uint) (*model.Punch, error)
	Update(punch *model.Punch) error
	GetByDay(employeeID uint, day string) ([]model.Punch, error)
	GetByDayAndKind(employeeID uint, day, kind string) (*model.Punch, error)
	GetBetween(employeeID uint, start, end time.Time) ([]model.Punch, error)
	GetAnomalies(employeeID uint, limit int) ([]model.Punch, error)
}

type punchRepository struct {
	db *gorm.DB
}

func NewPunchRepository(db *gorm.DB) PunchRepository {
	return &punchRepository{db}
}

func (r *punchRepository) Create(punch *model.Punch) error {
	return r.db.Create(punch).Error
}

func (r *punchRepository) FindByID(id uint) (*model.Punch, error) {
	var punch model.Punch
	err := r.db.First(&punch, id).Error
	return &punch, err
}

func (r *punchRepository) Update(punch *model.Punch) error {
	return r.db.Save(punch).Error
}

func (r *punchRepository) GetByDay(employeeID uint, day string) ([]model.Punch, error) {
	var punches []model.Punch
	err := r.db.Where("employee_id = ? AND day = ?", employeeID, day).
		Order("timestamp asc").
		Find(&punches).Error
	return punches, err
}

func (r *punchRepository) GetByDayAndKind(employeeID uint, day, kind string) (*model.Punch, error) {
	var punch model.Punch
	err := r.db.Where("employee_id = ? AND day = ? AND kind = ?", employeeID, day, kind).
		First(&punch).Error
	if err != nil {
		return nil, err
	}
	return &punch, nil
}

func (r *punchRepository) GetBetween(employeeID uint, start, end time.Time) ([]model.Punch, error) {
	var punches []model.Punch
	err := r.db.Where("employee_id = ? AND timestamp >= ? AND timestamp <= ?", employeeID, start, end).
		Order("timestamp asc").
		Find(&punches).Error
	return punches, err
}

func (r *punchRepository) GetAnomalies(employeeID uint, limit int) ([]model.Punch, error) {
	var punches []model.Punch
	err := r.db.Where("employee_id = ? AND anomaly <> ?", employeeID, "NONE").
		Order("timestamp desc").
		Limit(limit).
		Find(&punches).Error
	return punches, err
}
