// Package ledger records which reminders were already delivered, so a
// scan can skip tasks it notified about earlier.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Notification is one delivered reminder.
type Notification struct {
	ID         uint      `gorm:"primaryKey"`
	Employee   string    `gorm:"uniqueIndex:idx_employee_task;not null"`
	TaskKey    string    `gorm:"uniqueIndex:idx_employee_task;not null"`
	NotifiedAt time.Time `gorm:"not null"`
}

// Ledger is a sqlite-backed set of delivered reminders.
type Ledger struct {
	db *gorm.DB
}

// Open opens or creates the ledger database at path.
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Notification{}); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// WasNotified reports whether a reminder for (employee, key) was recorded.
func (l *Ledger) WasNotified(employee, key string) (bool, error) {
	var count int64
	err := l.db.Model(&Notification{}).
		Where("employee = ? AND task_key = ?", employee, key).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return count > 0, nil
}

// Record stores a delivery at time at, replacing an earlier one.
func (l *Ledger) Record(employee, key string, at time.Time) error {
	var n Notification
	err := l.db.Where("employee = ? AND task_key = ?", employee, key).First(&n).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		n = Notification{Employee: employee, TaskKey: key, NotifiedAt: at}
		if err := l.db.Create(&n).Error; err != nil {
			return fmt.Errorf("record notification: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("query ledger: %w", err)
	}
	if err := l.db.Model(&n).Update("notified_at", at).Error; err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

// Last returns when (employee, key) was last notified.
func (l *Ledger) Last(employee, key string) (time.Time, bool, error) {
	var n Notification
	err := l.db.Where("employee = ? AND task_key = ?", employee, key).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query ledger: %w", err)
	}
	return n.NotifiedAt, true, nil
}

// Forget removes every entry of employee. It returns the number removed.
func (l *Ledger) Forget(employee string) (int64, error) {
	res := l.db.Where("employee = ?", employee).Delete(&Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("forget %s: %w", employee, res.Error)
	}
	return res.RowsAffected, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
