package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkscribe/api-service/internal/domain/entity"
	"github.com/linkscribe/api-service/internal/domain/repository"
)

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a new link history repository
func NewLinkRepository(db *gorm.DB) repository.LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *entity.Link) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *linkRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Link, error) {
	var link entity.Link
	err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) List(ctx context.Context, limit, offset int) ([]*entity.Link, int64, error) {
	var links []*entity.Link
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.Link{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&links).Error
	if err != nil {
		return nil, 0, err
	}

	return links, total, nil
}

type labelCount struct {
	Label string
	Count int64
}

func (r *linkRepository) CountByLabel(ctx context.Context) (map[string]int64, error) {
	var rows []labelCount
	err := r.db.WithContext(ctx).
		Model(&entity.Link{}).
		Select("label, count(*) as count").
		Group("label").
		Order("label").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}
