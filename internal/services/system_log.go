package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/codexx/academy/backend/internal/models"
)

var globalDB *gorm.DB

func InitSystemLogger(db *gorm.DB) {
	globalDB = db
}

func LogInfo(module, action, message, ip string, extra interface{}) {
	writeLog("info", module, action, message, ip, extra)
}

func LogWarning(module, action, message, ip string, extra interface{}) {
	writeLog("warning", module, action, message, ip, extra)
}

func LogError(module, action, message, ip string, extra interface{}) {
	writeLog("error", module, action, message, ip, extra)
}

func writeLog(level, module, action, message, ip string, extra interface{}) {
	if globalDB == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.SystemLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		IP:        ip,
		Extra:     extraStr,
		CreatedAt: time.Now(),
	}
	globalDB.Create(entry)
}

// CleanupSystemLogs deletes operational log rows older than the retention
// window. Returns the number of rows removed.
func CleanupSystemLogs(db *gorm.DB, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := db.Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
