package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeStreakMilestone NotificationType = "streak_milestone"
	TypeStreakRisk      NotificationType = "streak_risk"
	TypeFreezeUsed      NotificationType = "freeze_used"
)

type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	Data      map[string]any   `json:"data" db:"data"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}
