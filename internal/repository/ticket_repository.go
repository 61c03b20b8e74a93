package repository

import (
	"errors"
	"fmt"

	"crm-backend/internal/model"
	"crm-backend/internal/policy"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketFilters struct {
	Status     string
	Priority   string
	AssigneeID uint
	Search     string
}

type TicketRepository interface {
	List(filters TicketFilters, scope policy.Scope) ([]model.Ticket, error)
	FindByID(id uint) (*model.Ticket, error)
	Create(ticket *model.Ticket) error
	Update(ticket *model.Ticket) error
	NextNumber(year int) (string, error)
	CreateMessage(message *model.TicketMessage) error
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db}
}

func (r *ticketRepository) List(filters TicketFilters, scope policy.Scope) ([]model.Ticket, error) {
	query := scope(r.db).
		Preload("Company").
		Preload("Contact").
		Preload("Assignee")

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		query = query.Where("priority = ?", filters.Priority)
	}
	if filters.AssigneeID != 0 {
		query = query.Where("assignee_id = ?", filters.AssigneeID)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("subject LIKE ? OR number LIKE ?", like, like)
	}

	var tickets []model.Ticket
	err := query.Order("status asc").Order("priority desc").Order("created_at desc").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) FindByID(id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.
		Preload("Company").
		Preload("Contact").
		Preload("Assignee").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		First(&ticket, id).Error
	return &ticket, err
}

func (r *ticketRepository) Create(ticket *model.Ticket) error {
	return r.db.Create(ticket).Error
}

func (r *ticketRepository) Update(ticket *model.Ticket) error {
	return r.db.Save(ticket).Error
}

// NextNumber allocates a ticket number for the year. The per-year counter row
// is incremented under a row lock inside a transaction, so two concurrent
// creations can never draw the same number.
func (r *ticketRepository) NextNumber(year int) (string, error) {
	var seq int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row model.TicketSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("year = ?", year).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = model.TicketSequence{Year: year, Seq: 1}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			seq = 1
			return nil
		}
		if err != nil {
			return err
		}
		row.Seq++
		seq = row.Seq
		return tx.Save(&row).Error
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TK-%d-%04d", year, seq), nil
}

func (r *ticketRepository) CreateMessage(message *model.TicketMessage) error {
	return r.db.Create(message).Error
}
