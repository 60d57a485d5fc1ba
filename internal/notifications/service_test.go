package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmateapp/shelfmate/internal/api/apitest"
	"github.com/shelfmateapp/shelfmate/internal/domain"
	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/logger"
	"github.com/shelfmateapp/shelfmate/internal/session"
)

type staticProfile struct{ p *domain.UserProfile }

func (s staticProfile) Profile() *domain.UserProfile { return s.p.Clone() }

func setup(t *testing.T) (*Service, *apitest.Backend, domain.UserProfile, domain.UserProfile) {
	t.Helper()
	backend := apitest.New(t)
	me := backend.AddUser(domain.UserProfile{LocalAuthID: "uid-me", DisplayName: "Ada Lovelace"})
	friend := backend.AddUser(domain.UserProfile{LocalAuthID: "uid-friend", DisplayName: "Grace Hopper"})
	backend.AddEdge(me.BackendID, friend.BackendID)
	backend.AddEdge(friend.BackendID, me.BackendID)

	svc := NewService(backend.Client(t), staticProfile{&me}, logger.Discard().Logger)
	return svc, backend, me, friend
}

func TestList_NewestFirst(t *testing.T) {
	svc, backend, me, friend := setup(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	backend.AddNotification(domain.Notification{UserID: me.BackendID, Type: domain.NotificationMessage, Message: "old", CreatedAt: base})
	backend.AddNotification(domain.Notification{UserID: "user-x", ActorID: friend.BackendID, Type: domain.NotificationBookAdded, Message: "newest", CreatedAt: base.Add(2 * time.Hour)})
	backend.AddNotification(domain.Notification{UserID: me.BackendID, Type: domain.NotificationFollow, Message: "middle", CreatedAt: base.Add(time.Hour), Read: true})
	backend.AddNotification(domain.Notification{UserID: "user-x", ActorID: "stranger", Type: domain.NotificationMessage, Message: "hidden", CreatedAt: base})

	list, err := svc.List(context.Background())
	require.NoError(t, err)

	var messages []string
	for _, n := range list {
		messages = append(messages, n.Message)
	}
	assert.Equal(t, []string{"newest", "middle", "old"}, messages)
	assert.Equal(t, 2, UnreadCount(list))
}

func TestMarkRead(t *testing.T) {
	svc, backend, me, _ := setup(t)
	ctx := context.Background()
	id := backend.AddNotification(domain.Notification{UserID: me.BackendID, Type: domain.NotificationMessage, Message: "hi"})

	require.NoError(t, svc.MarkRead(ctx, id))
	assert.True(t, backend.Notifications()[0].Read)

	assert.ErrorIs(t, svc.MarkRead(ctx, "notif-404"), domainerrors.ErrNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, " "), domainerrors.ErrValidation)
}

func TestNotify(t *testing.T) {
	svc, backend, me, friend := setup(t)

	created, err := svc.Notify(context.Background(), domain.Notification{
		UserID:  friend.BackendID,
		Type:    domain.NotificationFollow,
		Message: " Ada started following you ",
		Read:    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, me.BackendID, created.ActorID)
	assert.Equal(t, "Ada Lovelace", created.ActorName)
	assert.Equal(t, "Ada started following you", created.Message)
	assert.False(t, created.Read)
	assert.Len(t, backend.Notifications(), 1)
}

func TestNotify_Validation(t *testing.T) {
	svc, backend, _, friend := setup(t)

	_, err := svc.Notify(context.Background(), domain.Notification{UserID: friend.BackendID, Type: "poke", Message: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.Notify(context.Background(), domain.Notification{UserID: friend.BackendID, Type: domain.NotificationMessage})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Zero(t, backend.Calls("POST /notifications"))
}

func TestRequiresSignIn(t *testing.T) {
	backend := apitest.New(t)
	svc := NewService(backend.Client(t), staticProfile{}, logger.Discard().Logger)
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, session.ErrNotSignedIn)
}
