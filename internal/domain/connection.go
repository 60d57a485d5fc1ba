package domain

import "time"

// Connection is a directed follow edge.
type Connection struct {
	FollowerID  string    `json:"followerId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// UserSummary is the public view of another user.
type UserSummary struct {
	ID                string            `json:"id"`
	DisplayName       string            `json:"displayName"`
	AvatarURL         *string           `json:"avatarUrl,omitempty"`
	Bio               string            `json:"bio,omitempty"`
	LibraryVisibility LibraryVisibility `json:"libraryVisibility"`
}

// FollowerRecord is one row of the followers-with-status listing.
type FollowerRecord struct {
	User UserSummary `json:"user"`
	// IsFollowing is true when User follows the current user.
	IsFollowing bool `json:"isFollowing"`
	// IsFollowedByMe is true when the current user follows User.
	IsFollowedByMe bool `json:"isFollowedByMe"`
}
