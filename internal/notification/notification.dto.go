package notification

import "github.com/google/uuid"

type CreateNotificationRequest struct {
	UserID   uuid.UUID            `json:"user_id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`
	Title    string               `json:"title"`
	Body     string               `json:"body"`
	Data     map[string]any       `json:"data"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"` // ios, android, web
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	TotalCount    int             `json:"total_count"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
}
