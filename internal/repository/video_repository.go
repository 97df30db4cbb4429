package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learnhub/internal/model"
)

type VideoRepository struct {
	db *gorm.DB
}

// VideoFilter narrows List results; zero values mean "any".
type VideoFilter struct {
	Subject string
	Topic   string
	Level   string
	Offset  int
	Limit   int
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(video *model.Video) error {
	if err := r.db.Create(video).Error; err != nil {
		return fmt.Errorf("create video failed: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(id uint) (*model.Video, error) {
	var video model.Video
	if err := r.db.First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query video by id failed: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) List(filter VideoFilter) ([]model.Video, int64, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := r.db.Model(&model.Video{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Topic != "" {
		query = query.Where("topic = ?", filter.Topic)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count videos failed: %w", err)
	}

	var videos []model.Video
	if err := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&videos).Error; err != nil {
		return nil, 0, fmt.Errorf("list videos failed: %w", err)
	}
	return videos, total, nil
}

func (r *VideoRepository) ListByUploaderID(uploaderID uint) ([]model.Video, error) {
	var videos []model.Video
	if err := r.db.Where("uploader_id = ?", uploaderID).Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list videos by uploader failed: %w", err)
	}
	return videos, nil
}

func (r *VideoRepository) UpdateTranscript(id uint, transcript string) error {
	if err := r.db.Model(&model.Video{}).Where("id = ?", id).Update("transcript", transcript).Error; err != nil {
		return fmt.Errorf("update video transcript failed: %w", err)
	}
	return nil
}

func (r *VideoRepository) IncrementViews(id uint) error {
	if err := r.db.Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
		return fmt.Errorf("increment video views failed: %w", err)
	}
	return nil
}

func (r *VideoRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Video{}, id).Error; err != nil {
		return fmt.Errorf("delete video failed: %w", err)
	}
	return nil
}
