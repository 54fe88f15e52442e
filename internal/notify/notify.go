// Package notify turns workflow events into per-user notification rows and
// forwards them to any configured chat transports. It is a write-mostly log
// plus per-user read filtering; there is no state machine here.
package notify

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/paging"
)

// List returns a user's notifications, newest first.
func List(db *gorm.DB, userID uint, unreadOnly bool, page paging.Page) ([]models.Notification, paging.Meta, error) {
	q := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("notify: count for user %d: %w", userID, err)
	}

	var ns []models.Notification
	if err := q.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Normalize().Limit).
		Find(&ns).Error; err != nil {
		return nil, paging.Meta{}, fmt.Errorf("notify: list for user %d: %w", userID, err)
	}
	return ns, paging.MetaFor(page, total), nil
}

// MarkRead marks one notification read. Only the recipient may mark it.
func MarkRead(db *gorm.DB, id uint, actor models.User) error {
	var n models.Notification
	if err := db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("notify: notification not found: %d", id)
		}
		return fmt.Errorf("notify: get %d: %w", id, err)
	}
	if n.UserID != actor.ID {
		return apperr.Forbiddenf("notify: user %d does not own notification %d", actor.ID, id)
	}

	now := time.Now()
	res := db.Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return fmt.Errorf("notify: mark read %d: %w", id, res.Error)
	}
	// Already-read is fine; marking read is idempotent.
	return nil
}

// MarkAllRead marks every unread notification of the actor read.
func MarkAllRead(db *gorm.DB, actor models.User) (int64, error) {
	now := time.Now()
	res := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("notify: mark all read for %d: %w", actor.ID, res.Error)
	}
	return res.RowsAffected, nil
}

// ManagerFor returns the manager user ID of a department.
func ManagerFor(db *gorm.DB, departmentID uint) (uint, error) {
	var dept models.Department
	if err := db.First(&dept, departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFoundf("notify: department not found: %d", departmentID)
		}
		return 0, fmt.Errorf("notify: load department %d: %w", departmentID, err)
	}
	return dept.ManagerID, nil
}

// Admins returns the IDs of all admin users.
func Admins(db *gorm.DB) ([]uint, error) {
	var ids []uint
	if err := db.Model(&models.User{}).
		Where("role = ?", "admin").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("notify: list admins: %w", err)
	}
	return ids, nil
}
