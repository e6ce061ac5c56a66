package history

import (
	"fmt"

	"fund-dashboard-go/internal/models"
	"fund-dashboard-go/internal/portfolio"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Store is an optional local audit log of computed dashboard views and
// workflow dispatch attempts. A nil *Store is valid and records nothing,
// so callers never have to guard for the disabled case.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore opens the local history database and migrates its schema.
func NewStore(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&models.SnapshotRecord{}, &models.DispatchRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate history database: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// RecordView stores one computed dashboard view. Degraded marks views that
// were served from a fallback ladder rather than confirmed data.
func (s *Store) RecordView(dateKey string, view portfolio.DashboardView, degraded bool) {
	if s == nil {
		return
	}
	record := models.SnapshotRecord{
		DateKey:       dateKey,
		DailyProfit:   view.DailyProfit,
		HoldingProfit: view.HoldingProfit,
		TotalProfit:   view.TotalProfit,
		TotalCost:     view.TotalCost,
		Degraded:      degraded,
	}
	if err := s.db.Create(&record).Error; err != nil {
		s.logger.Warn("Failed to record dashboard view", zap.Error(err))
	}
}

// RecordDispatch stores one workflow trigger attempt.
func (s *Store) RecordDispatch(mode string, succeeded bool, statusCode int, message string) {
	if s == nil {
		return
	}
	record := models.DispatchRecord{
		Mode:       mode,
		Succeeded:  succeeded,
		StatusCode: statusCode,
		Message:    message,
	}
	if err := s.db.Create(&record).Error; err != nil {
		s.logger.Warn("Failed to record dispatch", zap.Error(err))
	}
}

// RecentViews returns the most recently recorded dashboard views, newest
// first. A disabled store returns an empty slice.
func (s *Store) RecentViews(limit int) ([]models.SnapshotRecord, error) {
	if s == nil {
		return []models.SnapshotRecord{}, nil
	}
	var records []models.SnapshotRecord
	if err := s.db.Order("created_at desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list recorded views: %w", err)
	}
	return records, nil
}
