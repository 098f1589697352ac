package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tb0hdan/kmu-curator/pkg/models"
	"github.com/tb0hdan/kmu-curator/pkg/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type SQLiteStorage struct {
	db *gorm.DB
}

type Config struct {
	DatabasePath string
	Debug        bool
}

func NewSQLiteStorage(cfg Config) (*SQLiteStorage, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	database, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// SQLite allows a single writer; serialize access instead of surfacing SQLITE_BUSY.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto-migrate schema
	if err := database.AutoMigrate(
		&models.ToolCandidate{},
		&models.CachedAnswer{},
		&models.ModerationEvent{},
	); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStorage{db: database}, nil
}

func (s *SQLiteStorage) CreateToolCandidate(ctx context.Context, candidate *models.ToolCandidate) error {
	return s.db.WithContext(ctx).Create(candidate).Error
}

func (s *SQLiteStorage) GetToolCandidate(ctx context.Context, id string) (*models.ToolCandidate, error) {
	var candidate models.ToolCandidate
	err := s.db.WithContext(ctx).First(&candidate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("tool candidate %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (s *SQLiteStorage) ListToolCandidates(ctx context.Context, filter CandidateFilter) ([]models.ToolCandidate, error) {
	var candidates []models.ToolCandidate
	query := s.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	err := query.Find(&candidates).Error
	return candidates, err
}

func (s *SQLiteStorage) TransitionToolCandidate(ctx context.Context, id string, from types.Status, update StatusUpdate) error {
	result := s.db.WithContext(ctx).
		Model(&models.ToolCandidate{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":      update.Status,
			"approved_by": update.ApprovedBy,
			"approved_at": update.ApprovedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ToolCandidate{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("tool candidate %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("tool candidate %s not %s: %w", id, from, ErrPreconditionFailed)
}

func (s *SQLiteStorage) DeleteAllToolCandidates(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.ToolCandidate{})
	return result.RowsAffected, result.Error
}

func (s *SQLiteStorage) GetCachedAnswer(ctx context.Context, key string) (*models.CachedAnswer, error) {
	var answer models.CachedAnswer
	err := s.db.WithContext(ctx).First(&answer, "question_hash = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cached answer %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (s *SQLiteStorage) UpsertCachedAnswer(ctx context.Context, answer *models.CachedAnswer) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"department", "question", "answer", "tool_count", "created_at"}),
	}).Create(answer).Error
}

func (s *SQLiteStorage) DeleteCachedAnswersByDepartment(ctx context.Context, department types.Department) (int64, error) {
	result := s.db.WithContext(ctx).Where("department = ?", department).Delete(&models.CachedAnswer{})
	return result.RowsAffected, result.Error
}

func (s *SQLiteStorage) CreateModerationEvent(ctx context.Context, event *models.ModerationEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *SQLiteStorage) GetModerationEvents(ctx context.Context, limit, offset int) ([]models.ModerationEvent, int64, error) {
	var events []models.ModerationEvent
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.ModerationEvent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	err := query.Find(&events).Error
	return events, total, err
}

func (s *SQLiteStorage) DeleteAllModerationEvents(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&models.ModerationEvent{}).Error
}

func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
