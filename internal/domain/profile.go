// Package domain contains the entities shared by the Shelfmate client: profiles, books, loans,
// follow-graph edges, notifications, and local settings.
package domain

import (
	"strings"
	"time"
)

// LibraryVisibility controls whether other users may see a user's book list at all.
type LibraryVisibility string

const (
	// LibraryPublic lets anyone open the library.
	LibraryPublic LibraryVisibility = "public"
	// LibraryFriends lets only mutual followers open the library.
	LibraryFriends LibraryVisibility = "friends"
	// LibraryPrivate hides the library from everyone but the owner.
	LibraryPrivate LibraryVisibility = "private"
)

// Valid checks if the visibility is one of the known values.
func (v LibraryVisibility) Valid() bool {
	switch v {
	case LibraryPublic, LibraryFriends, LibraryPrivate:
		return true
	default:
		return false
	}
}

// UserProfile is the signed-in user's profile as held by the session.
type UserProfile struct {
	// LocalAuthID is issued by the identity provider and keys the backend profile lookup.
	LocalAuthID string `json:"localAuthId"`
	// BackendID is the backend's own identifier for the same user.
	BackendID         string            `json:"id"`
	DisplayName       string            `json:"displayName"`
	Email             string            `json:"email,omitempty"`
	Bio               string            `json:"bio"`
	LibraryVisibility LibraryVisibility `json:"libraryVisibility"`
	// AvatarURL is nil when the placeholder image should be used.
	AvatarURL *string `json:"avatarUrl,omitempty"`
	// LastMutation is bumped whenever connections or loans may be stale.
	LastMutation time.Time `json:"-"`
}

// FirstName returns the part of the display name before the first space.
func (p *UserProfile) FirstName() string {
	return FirstName(p.DisplayName)
}

// Complete reports whether both identifiers are present.
// The session never exposes a profile that is not complete.
func (p *UserProfile) Complete() bool {
	return p != nil && p.LocalAuthID != "" && p.BackendID != ""
}

// Clone returns a deep copy so callers cannot mutate session state through a snapshot.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	if p.AvatarURL != nil {
		url := *p.AvatarURL
		c.AvatarURL = &url
	}
	return &c
}

// FirstName returns the substring of displayName before the first space.
// An empty name, or one that starts with a space, yields "".
func FirstName(displayName string) string {
	first, _, _ := strings.Cut(displayName, " ")
	return first
}

// ProfilePatch carries a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	DisplayName       *string            `json:"displayName,omitempty" validate:"omitempty,min=1,max=120"`
	LibraryVisibility *LibraryVisibility `json:"libraryVisibility,omitempty" validate:"omitempty,oneof=public friends private"`
	// AvatarURL set to "" clears the avatar.
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.DisplayName == nil && p.LibraryVisibility == nil && p.AvatarURL == nil && p.Bio == nil
}

// Apply merges the patch into the profile.
func (p ProfilePatch) Apply(profile *UserProfile) {
	if p.DisplayName != nil {
		profile.DisplayName = *p.DisplayName
	}
	if p.LibraryVisibility != nil {
		profile.LibraryVisibility = *p.LibraryVisibility
	}
	if p.AvatarURL != nil {
		if *p.AvatarURL == "" {
			profile.AvatarURL = nil
		} else {
			url := *p.AvatarURL
			profile.AvatarURL = &url
		}
	}
	if p.Bio != nil {
		profile.Bio = *p.Bio
	}
}
