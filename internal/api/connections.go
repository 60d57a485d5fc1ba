package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// ListFollowersWithStatus returns every user touching userID's follow graph with both edge flags.
func (c *Client) ListFollowersWithStatus(ctx context.Context, userID string) ([]domain.FollowerRecord, error) {
	var records []domain.FollowerRecord
	path := "/connections/" + url.PathEscape(userID) + "/followers-with-status"
	if err := c.do(ctx, "listConnections", http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Follow creates the edge follower -> following.
func (c *Client) Follow(ctx context.Context, followerID, followingID string) error {
	body := domain.Connection{FollowerID: followerID, FollowingID: followingID}
	return c.do(ctx, "follow", http.MethodPost, "/connections", body, nil)
}

// Unfollow deletes the edge follower -> following.
func (c *Client) Unfollow(ctx context.Context, followerID, followingID string) error {
	path := "/connections/" + url.PathEscape(followerID) + "/" + url.PathEscape(followingID)
	return c.do(ctx, "unfollow", http.MethodDelete, path, nil, nil)
}
