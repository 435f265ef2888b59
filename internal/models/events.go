package models

import "time"

// AlertType categorises an alert
type AlertType string

const (
	AlertBattery     AlertType = "battery"
	AlertMaintenance AlertType = "maintenance"
)

// AlertPriority is the urgency of an alert
type AlertPriority string

const (
	PriorityLow    AlertPriority = "low"
	PriorityMedium AlertPriority = "medium"
	PriorityHigh   AlertPriority = "high"
)

// Alert is a condition raised against the fleet. Alerts are immutable
// once created and removed only by explicit dismissal.
type Alert struct {
	ID        int64         `json:"id"`
	Type      AlertType     `json:"type"`
	Message   string        `json:"message"`
	Priority  AlertPriority `json:"priority"`
	Timestamp time.Time     `json:"timestamp"`
}

// NotificationType categorises a user-visible notification
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
)

// Notification is a transient user-visible message. The store keeps only
// the most recent entries, newest first.
type Notification struct {
	ID        int64            `json:"id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}
