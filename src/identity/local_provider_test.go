package identity

import (
	"context"
	"testing"

	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInStampsSession(t *testing.T) {
	p := NewLocalProvider(nil)

	first, err := p.SignIn(context.Background(), models.MUser{UID: "u1", Email: "u1@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, "u1", first.DisplayName)

	second, err := p.SignIn(context.Background(), models.MUser{UID: "u1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, second.SessionID, p.Current().SessionID)
}

func TestSignInRejectsEmptyUID(t *testing.T) {
	p := NewLocalProvider(nil)
	_, err := p.SignIn(context.Background(), models.MUser{UID: "  "})
	assert.ErrorIs(t, err, ErrInvalidUser)
	assert.Nil(t, p.Current())
}

func TestOnChangeDeliversCurrentThenChanges(t *testing.T) {
	p := NewLocalProvider(nil)
	ctx := context.Background()

	var seen []string
	record := func(u *models.MUser) {
		if u == nil {
			seen = append(seen, "<nil>")
			return
		}
		seen = append(seen, u.UID)
	}

	unsubscribe := p.OnChange(record)
	_, err := p.SignIn(ctx, models.MUser{UID: "alice"})
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx))
	require.NoError(t, p.SignOut(ctx))

	unsubscribe()
	unsubscribe()
	_, err = p.SignIn(ctx, models.MUser{UID: "bob"})
	require.NoError(t, err)

	assert.Equal(t, []string{"<nil>", "alice", "<nil>"}, seen)
}

func TestListenersNotifiedInRegistrationOrder(t *testing.T) {
	p := NewLocalProvider(nil)
	var order []int

	p.OnChange(func(*models.MUser) { order = append(order, 1) })
	p.OnChange(func(*models.MUser) { order = append(order, 2) })
	order = nil

	_, err := p.SignIn(context.Background(), models.MUser{UID: "u"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
}

func TestSignInCancelledContext(t *testing.T) {
	p := NewLocalProvider(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.SignIn(ctx, models.MUser{UID: "u"})
	assert.ErrorIs(t, err, context.Canceled)
}
