package domain

import "time"

// NotificationType classifies what happened.
type NotificationType string

const (
	NotificationFollow    NotificationType = "follow"
	NotificationLoan      NotificationType = "loan"
	NotificationBookAdded NotificationType = "book_added"
	NotificationMessage   NotificationType = "message"
)

// Notification is an entry in the friends' activity feed.
type Notification struct {
	ID        string           `json:"id,omitempty"`
	UserID    string           `json:"userId" validate:"required"`
	ActorID   string           `json:"actorId,omitempty"`
	ActorName string           `json:"actorName,omitempty"`
	Type      NotificationType `json:"type" validate:"required,oneof=follow loan book_added message"`
	Message   string           `json:"message" validate:"required,max=500"`
	BookID    string           `json:"bookId,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt,omitzero"`
}
