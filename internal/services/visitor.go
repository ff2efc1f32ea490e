package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/pkg/logger"
)

// VisitorService records public page visits. Tracking is side-effect
// only: failures are logged and never surfaced to the page render.
type VisitorService struct {
	db *gorm.DB
}

func NewVisitorService(db *gorm.DB) *VisitorService {
	return &VisitorService{db: db}
}

// Track appends a visitor log entry for the workspace behind a username.
func (s *VisitorService) Track(username, ip string) {
	var ws models.Workspace
	if err := s.db.Where("slug = ?", username).First(&ws).Error; err != nil {
		logger.Debug().Str("username", username).Msg("visitor not tracked, unknown workspace")
		return
	}

	entry := models.VisitorLog{
		WorkspaceID: ws.ID,
		IPAddress:   ip,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.Warn().Err(err).Str("username", username).Msg("visitor log insert failed")
	}
}

// CleanupVisitorLogs deletes visitor rows older than the retention window.
func CleanupVisitorLogs(db *gorm.DB, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := db.Where("created_at < ?", cutoff).Delete(&models.VisitorLog{})
	return result.RowsAffected, result.Error
}

var retentionCron *cron.Cron

// StartRetentionScheduler prunes visitor and system logs every night.
func StartRetentionScheduler(db *gorm.DB, retentionDays int) {
	retentionCron = cron.New()

	_, err := retentionCron.AddFunc("0 3 * * *", func() {
		if n, err := CleanupVisitorLogs(db, retentionDays); err != nil {
			logger.Error().Err(err).Msg("visitor log cleanup failed")
		} else if n > 0 {
			logger.Infof("[Retention] Removed %d visitor log rows", n)
		}

		if n, err := CleanupSystemLogs(db, retentionDays); err != nil {
			logger.Error().Err(err).Msg("system log cleanup failed")
		} else if n > 0 {
			logger.Infof("[Retention] Removed %d system log rows", n)
		}
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to schedule retention cleanup")
		return
	}

	retentionCron.Start()
	logger.Infof("[Retention] Cleanup scheduler started (retention: %d days)", retentionDays)
}

// StopRetentionScheduler stops the nightly cleanup.
func StopRetentionScheduler() {
	if retentionCron != nil {
		retentionCron.Stop()
	}
}
