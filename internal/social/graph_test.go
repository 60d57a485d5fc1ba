package social

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

func user(id, name string) domain.UserSummary {
	return domain.UserSummary{ID: id, DisplayName: name}
}

func ids(list []domain.UserSummary) []string {
	out := make([]string, 0, len(list))
	for _, u := range list {
		out = append(out, u.ID)
	}
	return out
}

func edge(from, to string) domain.Connection {
	return domain.Connection{FollowerID: from, FollowingID: to}
}

func TestAggregate(t *testing.T) {
	edges := []domain.Connection{
		edge("bob", "me"),
		edge("me", "bob"),
		edge("carol", "me"),
		edge("me", "dan"),
	}
	users := []domain.UserSummary{user("bob", "Bob"), user("carol", "Carol"), user("dan", "Dan")}

	g := Aggregate("me", edges, users)
	assert.Equal(t, []string{"bob"}, ids(g.Friends))
	assert.Equal(t, []string{"bob", "carol"}, ids(g.Followers))
	assert.Equal(t, []string{"bob", "dan"}, ids(g.Following))
	assert.Equal(t, []string{"carol"}, ids(g.FollowersOnly()))
	assert.Equal(t, []string{"dan"}, ids(g.FollowingOnly()))
	assert.Equal(t, "Bob", g.Friends[0].DisplayName)
}

func TestAggregate_DeduplicatesFirstWins(t *testing.T) {
	edges := []domain.Connection{
		edge("bob", "me"),
		edge("bob", "me"),
		edge("me", "bob"),
		edge("me", "bob"),
	}
	users := []domain.UserSummary{user("bob", "Bob First"), user("bob", "Bob Second")}

	g := Aggregate("me", edges, users)
	assert.Len(t, g.Friends, 1)
	assert.Len(t, g.Followers, 1)
	assert.Len(t, g.Following, 1)
	assert.Equal(t, "Bob First", g.Followers[0].DisplayName)
}

func TestAggregate_ExcludesSelf(t *testing.T) {
	edges := []domain.Connection{edge("me", "me"), edge("x", "y")}
	g := Aggregate("me", edges, nil)
	assert.Empty(t, g.Friends)
	assert.Empty(t, g.Followers)
	assert.Empty(t, g.Following)
}

func TestAggregate_UnknownUserKeepsID(t *testing.T) {
	g := Aggregate("me", []domain.Connection{edge("ghost", "me")}, nil)
	assert.Equal(t, []domain.UserSummary{{ID: "ghost"}}, g.Followers)
}

func TestEdgesFromRecords(t *testing.T) {
	records := []domain.FollowerRecord{
		{User: user("bob", "Bob"), IsFollowing: true, IsFollowedByMe: true},
		{User: user("carol", "Carol"), IsFollowing: true},
		{User: user("dan", "Dan"), IsFollowedByMe: true},
		{User: user("me", "Me"), IsFollowing: true, IsFollowedByMe: true},
		{User: user("eve", "Eve")},
	}

	edges := EdgesFromRecords("me", records)
	assert.Equal(t, []domain.Connection{
		edge("bob", "me"), edge("me", "bob"), edge("carol", "me"), edge("me", "dan"),
	}, edges)
	assert.True(t, IsFriend("me", "bob", edges))
	assert.False(t, IsFriend("me", "carol", edges))
	assert.False(t, IsFriend("me", "dan", edges))
}

// The backend lists a mutual follow once per edge; both rows must collapse into one entry.
func TestEdgesFromRecords_DuplicateRowsCollapse(t *testing.T) {
	records := []domain.FollowerRecord{
		{User: user("bob", "Bob"), IsFollowing: true, IsFollowedByMe: true},
		{User: user("bob", "Bob"), IsFollowing: true, IsFollowedByMe: true},
	}
	g := Aggregate("me", EdgesFromRecords("me", records), UsersFromRecords(records))
	assert.Equal(t, []string{"bob"}, ids(g.Friends))
	assert.Equal(t, []string{"bob"}, ids(g.Followers))
	assert.Equal(t, []string{"bob"}, ids(g.Following))
}

func TestFilter(t *testing.T) {
	g := Graph{
		Friends:   []domain.UserSummary{user("1", "Ada Lovelace"), user("2", "Grace Hopper")},
		Followers: []domain.UserSummary{user("3", "ÅSA Larsson")},
		Following: []domain.UserSummary{user("4", "Alan Turing")},
	}

	got := Filter(g, "LOVE")
	assert.Equal(t, []string{"1"}, ids(got.Friends))
	assert.Empty(t, got.Followers)
	assert.Empty(t, got.Following)

	got = Filter(g, "åsa")
	assert.Equal(t, []string{"3"}, ids(got.Followers))

	got = Filter(g, "a")
	assert.Len(t, got.Friends, 2)
	assert.Len(t, got.Following, 1)

	assert.Equal(t, g, Filter(g, ""))
}

func TestAggregate_FriendsAgreeWithIsFriend(t *testing.T) {
	edges := []domain.Connection{
		edge("bob", "me"), edge("me", "carol"), edge("me", "bob"),
		edge("dan", "me"), edge("carol", "dan"), edge("eve", "me"), edge("me", "eve"),
	}
	g := Aggregate("me", edges, nil)

	friends := make(map[string]bool)
	for _, u := range g.Friends {
		friends[u.ID] = true
	}
	for _, other := range []string{"bob", "carol", "dan", "eve"} {
		assert.Equal(t, IsFriend("me", other, edges), friends[other], other)
	}
	assert.Equal(t, []string{"bob", "eve"}, ids(g.Friends))
	assert.Equal(t, []string{"dan"}, ids(g.FollowersOnly()))
	assert.Equal(t, []string{"carol"}, ids(g.FollowingOnly()))
}
