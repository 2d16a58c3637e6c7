package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snowflake_data/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrRecordNotFound is returned when no record has the requested ID.
var ErrRecordNotFound = errors.New("record not found")

// RecordRepository интерфейс для работы с базой данных записей
type RecordRepository interface {
	Create(ctx context.Context, record *models.SnowflakeData) error
	GetByID(ctx context.Context, id uint) (*models.SnowflakeData, error)
	List(ctx context.Context) ([]models.SnowflakeData, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

// RecordUpdateParams параметры для обновления записи
type RecordUpdateParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// RecordService implements list/retrieve/create/update/delete over SnowflakeData.
type RecordService struct {
	repository RecordRepository
	logger     *logrus.Logger
}

// NewRecordService создает новый сервис записей
func NewRecordService(repository RecordRepository, logger *logrus.Logger) *RecordService {
	return &RecordService{
		repository: repository,
		logger:     logger,
	}
}

// NewRecordServiceFromDB создает сервис записей поверх GORM
func NewRecordServiceFromDB(db *gorm.DB, logger *logrus.Logger) *RecordService {
	return NewRecordService(NewGormRecordRepository(db), logger)
}

// Create validates and stores a new record
func (s *RecordService) Create(ctx context.Context, record *models.SnowflakeData) error {
	logger := s.logger.WithField("title", record.Title)

	if err := record.Validate(); err != nil {
		return err
	}

	if err := s.repository.Create(ctx, record); err != nil {
		logger.WithError(err).Error("Failed to save record")
		return fmt.Errorf("failed to create record: %w", err)
	}

	logger.WithField("record_id", record.ID).Info("Record created")
	return nil
}

// Get returns a record by ID
func (s *RecordService) Get(ctx context.Context, id uint) (*models.SnowflakeData, error) {
	record, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.WithError(err).WithField("record_id", id).Error("Failed to get record")
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// List returns all records ordered by ID
func (s *RecordService) List(ctx context.Context) ([]models.SnowflakeData, error) {
	records, err := s.repository.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list records")
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// Update applies params to a record. With partial=false both fields are
// required, mirroring a full replacement.
func (s *RecordService) Update(ctx context.Context, id uint, params RecordUpdateParams, partial bool) (*models.SnowflakeData, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !partial {
		if params.Title == nil {
			return nil, &models.ValidationError{Field: "title", Message: "is required"}
		}
		if params.Description == nil {
			return nil, &models.ValidationError{Field: "description", Message: "is required"}
		}
	}

	updated := *record
	if params.Title != nil {
		updated.Title = *params.Title
	}
	if params.Description != nil {
		updated.Description = *params.Description
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":       updated.Title,
		"description": updated.Description,
		"updated_at":  time.Now().UTC(),
	}
	if err := s.repository.Update(ctx, id, updates); err != nil {
		s.logger.WithError(err).WithField("record_id", id).Error("Failed to update record")
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	s.logger.WithField("record_id", id).Info("Record updated")
	return s.Get(ctx, id)
}

// Delete removes a record
func (s *RecordService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		s.logger.WithError(err).WithField("record_id", id).Error("Failed to delete record")
		return fmt.Errorf("failed to delete record: %w", err)
	}

	s.logger.WithField("record_id", id).Info("Record deleted")
	return nil
}

// GormRecordRepository реализация репозитория записей для GORM
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository создает новый GORM репозиторий записей
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// Create создает новую запись в БД
func (r *GormRecordRepository) Create(ctx context.Context, record *models.SnowflakeData) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID получает запись по ID
func (r *GormRecordRepository) GetByID(ctx context.Context, id uint) (*models.SnowflakeData, error) {
	var record models.SnowflakeData
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// List получает все записи
func (r *GormRecordRepository) List(ctx context.Context) ([]models.SnowflakeData, error) {
	records := make([]models.SnowflakeData, 0)
	err := r.db.WithContext(ctx).Order("id").Find(&records).Error
	return records, err
}

// Update обновляет запись
func (r *GormRecordRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.SnowflakeData{}).Where("id = ?", id).Updates(updates).Error
}

// Delete удаляет запись
func (r *GormRecordRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SnowflakeData{}, id).Error
}
