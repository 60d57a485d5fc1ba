package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// ListFriendsNotifications returns the activity feed built from userID's friends.
func (c *Client) ListFriendsNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	var out []domain.Notification
	path := "/notifications/" + url.PathEscape(userID) + "/all-friends-notifications"
	if err := c.do(ctx, "listNotifications", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	path := "/notifications/" + url.PathEscape(notificationID) + "/mark-as-read"
	return c.do(ctx, "markNotificationRead", http.MethodPatch, path, nil, nil)
}

// CreateNotification posts a notification.
func (c *Client) CreateNotification(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	var out domain.Notification
	if err := c.do(ctx, "createNotification", http.MethodPost, "/notifications", n, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
