// Package social derives the friends, followers and following lists from follow edges.
package social

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// Graph holds the three lists shown on the friends screen. Followers and Following may include
// users that are also in Friends.
type Graph struct {
	Friends   []domain.UserSummary `json:"friends"`
	Followers []domain.UserSummary `json:"followers"`
	Following []domain.UserSummary `json:"following"`
}

// EdgesFromRecords converts followers-with-status rows into directed edges relative to selfID.
// Rows about selfID itself are skipped.
func EdgesFromRecords(selfID string, records []domain.FollowerRecord) []domain.Connection {
	edges := make([]domain.Connection, 0, len(records))
	for _, r := range records {
		other := r.User.ID
		if other == "" || other == selfID {
			continue
		}
		if r.IsFollowing {
			edges = append(edges, domain.Connection{FollowerID: other, FollowingID: selfID})
		}
		if r.IsFollowedByMe {
			edges = append(edges, domain.Connection{FollowerID: selfID, FollowingID: other})
		}
	}
	return edges
}

// UsersFromRecords returns the user summaries carried by records.
func UsersFromRecords(records []domain.FollowerRecord) []domain.UserSummary {
	users := make([]domain.UserSummary, 0, len(records))
	for _, r := range records {
		users = append(users, r.User)
	}
	return users
}

// edgeIndex records, per other user, which directions of edge exist relative to selfID.
type edgeIndex struct {
	selfID    string
	follower  map[string]bool
	following map[string]bool
}

func indexEdges(selfID string, edges []domain.Connection) edgeIndex {
	idx := edgeIndex{selfID: selfID, follower: make(map[string]bool), following: make(map[string]bool)}
	for _, e := range edges {
		switch {
		case e.FollowingID == selfID && e.FollowerID != selfID:
			idx.follower[e.FollowerID] = true
		case e.FollowerID == selfID && e.FollowingID != selfID:
			idx.following[e.FollowingID] = true
		}
	}
	return idx
}

// friend is the single definition of friend: both edges exist.
func (idx edgeIndex) friend(other string) bool {
	return idx.follower[other] && idx.following[other]
}

// IsFriend reports whether both edges between selfID and other exist.
func IsFriend(selfID, other string, edges []domain.Connection) bool {
	return indexEdges(selfID, edges).friend(other)
}

// Aggregate builds the graph for selfID. Users are looked up in users by id, first occurrence
// wins; an edge to an unknown user yields a summary carrying only the id. Each list is
// deduplicated by id keeping the first occurrence, and selfID never appears.
func Aggregate(selfID string, edges []domain.Connection, users []domain.UserSummary) Graph {
	byID := make(map[string]domain.UserSummary, len(users))
	for _, u := range users {
		if _, ok := byID[u.ID]; !ok {
			byID[u.ID] = u
		}
	}
	lookup := func(id string) domain.UserSummary {
		if u, ok := byID[id]; ok {
			return u
		}
		return domain.UserSummary{ID: id}
	}

	idx := indexEdges(selfID, edges)
	g := Graph{
		Friends:   []domain.UserSummary{},
		Followers: make([]domain.UserSummary, 0, len(idx.follower)),
		Following: make([]domain.UserSummary, 0, len(idx.following)),
	}
	seen := make(map[string]bool)
	seenFollower := make(map[string]bool)
	seenFollowing := make(map[string]bool)
	for _, e := range edges {
		var other string
		switch {
		case e.FollowingID == selfID && e.FollowerID != selfID:
			other = e.FollowerID
			if !seenFollower[other] {
				seenFollower[other] = true
				g.Followers = append(g.Followers, lookup(other))
			}
		case e.FollowerID == selfID && e.FollowingID != selfID:
			other = e.FollowingID
			if !seenFollowing[other] {
				seenFollowing[other] = true
				g.Following = append(g.Following, lookup(other))
			}
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			if idx.friend(other) {
				g.Friends = append(g.Friends, lookup(other))
			}
		}
	}
	return g
}

// FollowersOnly returns followers that are not friends.
func (g Graph) FollowersOnly() []domain.UserSummary {
	return g.withoutFriends(g.Followers)
}

// FollowingOnly returns followed users that are not friends.
func (g Graph) FollowingOnly() []domain.UserSummary {
	return g.withoutFriends(g.Following)
}

func (g Graph) withoutFriends(list []domain.UserSummary) []domain.UserSummary {
	friends := make(map[string]bool, len(g.Friends))
	for _, u := range g.Friends {
		friends[u.ID] = true
	}
	out := make([]domain.UserSummary, 0, len(list))
	for _, u := range list {
		if !friends[u.ID] {
			out = append(out, u)
		}
	}
	return out
}

var lower = cases.Lower(language.Und)

// Filter keeps users whose display name contains query, both lowercased. An empty query keeps everything.
func Filter(g Graph, query string) Graph {
	if query == "" {
		return g
	}
	needle := lower.String(query)
	match := func(list []domain.UserSummary) []domain.UserSummary {
		out := make([]domain.UserSummary, 0, len(list))
		for _, u := range list {
			if strings.Contains(lower.String(u.DisplayName), needle) {
				out = append(out, u)
			}
		}
		return out
	}
	return Graph{
		Friends:   match(g.Friends),
		Followers: match(g.Followers),
		Following: match(g.Following),
	}
}
