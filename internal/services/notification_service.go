package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/notifications"
	apperrors "github.com/gamehaqqs/gamehaqqs/pkg/errors"
)

// Stream events published alongside notification writes.
const (
	EventNotificationCreated = "notification.created"
	EventNotificationRead    = "notification.read"
	EventNotificationReadAll = "notification.read_all"
	EventLeaderboardRebuilt  = "leaderboard.rebuilt"
)

// Publisher delivers live events to connected clients.
type Publisher interface {
	Publish(userID string, event notifications.Event)
	Broadcast(event notifications.Event)
}

// NotificationDTO represents the API-friendly notification payload.
type NotificationDTO struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
}

// ListNotificationsInput defines filters for querying user notifications.
type ListNotificationsInput struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationService records user-facing events and pushes them to live subscribers.
type NotificationService struct {
	db        *gorm.DB
	publisher Publisher
}

// NewNotificationService constructs a NotificationService. publisher may be nil.
func NewNotificationService(db *gorm.DB, publisher Publisher) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db, publisher: publisher}, nil
}

// Notify appends an unread notification. Storage errors are returned; the live push is best-effort.
func (s *NotificationService) Notify(ctx context.Context, userID, notificationType string, payload map[string]any) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("notification user id is required")
	}
	notificationType = strings.TrimSpace(notificationType)
	if notificationType == "" {
		return nil, apperrors.NewBadRequest("notification type is required")
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Payload: datatypes.JSONMap(payload),
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, storageError("notifications: create", err)
	}

	dto := mapNotification(notification)
	s.publish(userID, EventNotificationCreated, &dto)
	return &dto, nil
}

// ListForUser returns notifications for the supplied user ordered by recency.
func (s *NotificationService) ListForUser(ctx context.Context, input ListNotificationsInput) ([]NotificationDTO, int64, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, 0, apperrors.NewBadRequest("notification user id is required")
	}

	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if input.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("notifications: count", err)
	}

	var rows []models.Notification
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(clampLimit(input.Limit, 25, 100)).
		Offset(max(0, input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, 0, storageError("notifications: list", err)
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, total, nil
}

// MarkRead sets the read flag on a notification owned by userID.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		return nil, lookupError("notifications: load", err)
	}

	if !notification.Read {
		now := time.Now().UTC()
		if err := s.db.WithContext(ctx).Model(&notification).
			Updates(map[string]any{"is_read": true, "read_at": now}).Error; err != nil {
			return nil, storageError("notifications: mark read", err)
		}
		notification.Read = true
		notification.ReadAt = &now
	}

	dto := mapNotification(notification)
	s.publish(userID, EventNotificationRead, &dto)
	return &dto, nil
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": time.Now().UTC()})
	if result.Error != nil {
		return 0, storageError("notifications: mark all read", result.Error)
	}

	s.publish(userID, EventNotificationReadAll, nil)
	return result.RowsAffected, nil
}

func (s *NotificationService) publish(userID, event string, dto *NotificationDTO) {
	if s.publisher == nil {
		return
	}
	message := notifications.Event{Event: event}
	if dto != nil {
		message.Data = dto
	}
	s.publisher.Publish(userID, message)
}

func mapNotification(row models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      row.Type,
		Payload:   map[string]any(row.Payload),
		Read:      row.Read,
		CreatedAt: row.CreatedAt,
		ReadAt:    row.ReadAt,
	}
}
