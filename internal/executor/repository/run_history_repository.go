package repository

import (
	"context"
	"errors"

	"golang-market-intel/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewRunHistoryRepository creates a gorm-backed RunHistoryRepository.
func NewRunHistoryRepository(db *gorm.DB) RunHistoryRepository {
	return &runHistoryRepository{db: db}
}

type runHistoryRepository struct {
	db *gorm.DB
}

// Create creates a new run history record.
func (r *runHistoryRepository) Create(ctx context.Context, history *entity.RunHistory) error {
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(history).Error
}

// Update saves every field of the run history record, inserting it when missing.
func (r *runHistoryRepository) Update(ctx context.Context, history *entity.RunHistory) error {
	return r.db.WithContext(ctx).Save(history).Error
}

func (r *runHistoryRepository) FindByID(ctx context.Context, id string) (*entity.RunHistory, error) {
	var history entity.RunHistory
	if err := r.db.WithContext(ctx).First(&history, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &history, nil
}

// FindRecent returns the latest runs, newest first.
func (r *runHistoryRepository) FindRecent(ctx context.Context, limit int) ([]entity.RunHistory, error) {
	var histories []entity.RunHistory
	if err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}
