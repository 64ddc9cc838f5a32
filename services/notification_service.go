package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vayungodara/lockin-sub000/internal/notification"
)

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	service := &NotificationService{
		db: db,
	}
	service.dispatcher = NewNotificationDispatcher(service)
	return service
}

// SetPushProvider injects the real FCM provider from main.go. Without one
// the dispatcher only persists in-app rows.
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.SetPushProvider(provider)
}

// CreateNotification persists the row and hands it to the dispatcher.
// Fire-and-forget from the emitter's perspective: delivery failures are
// logged, never propagated back to streak logic.
func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("notification requires a user id")
	}

	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}

	dataJSON, _ := json.Marshal(req.Data)

	query := `
	INSERT INTO notifications (id, user_id, type, priority, title, body, data, is_read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW())
	RETURNING id, user_id, type, title, body, is_read, created_at
	`

	notif := &notification.Notification{Data: req.Data}
	err := s.db.QueryRow(ctx, query, uuid.New(), req.UserID, req.Type, priority, req.Title, req.Body, dataJSON).Scan(
		&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Body, &notif.IsRead, &notif.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.dispatcher.DispatchNotification(notif)

	return notif, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	whereClause := "WHERE user_id = $1"
	if unreadOnly {
		whereClause += " AND is_read = false"
	}

	query := fmt.Sprintf(`
	SELECT id, user_id, type, title, body, data, is_read, created_at
	FROM notifications
	%s
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`, whereClause)

	rows, err := s.db.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		notif := &notification.Notification{}
		var dataJSON []byte

		err := rows.Scan(&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Body, &dataJSON, &notif.IsRead, &notif.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		json.Unmarshal(dataJSON, &notif.Data)
		notifications = append(notifications, notif)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	if notifications == nil {
		notifications = []*notification.Notification{}
	}

	var unreadCount, totalCount int
	s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false", userID).Scan(&unreadCount)
	s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1", userID).Scan(&totalCount)

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
		TotalCount:    totalCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	query := `
	UPDATE notifications
	SET is_read = true
	WHERE id = $1 AND user_id = $2 AND is_read = false
	`

	result, err := s.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found or already read")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false", userID)
	if err != nil {
		return fmt.Errorf("failed to mark all as read: %w", err)
	}
	return nil
}

// RegisterDevice upserts the push token, stealing it from any other user
// who registered it before (shared devices).
func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("device token is required")
	}

	query := `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (token)
	DO UPDATE SET user_id = $1, platform = $3
	`

	_, err := s.db.Exec(ctx, query, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) getDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, "SELECT token, platform FROM device_tokens WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
