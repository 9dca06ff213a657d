package notify

import (
	"context"
	"testing"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailer_Send(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	ctx := logger.NewContext(context.Background(), log.With("request_id", "req-9"))

	m := NewLogMailer("noreply@tasks.example.com")
	require.NoError(t, m.Send(ctx, WelcomeMessage("new.user@example.com", "New User")))

	entries, err := buf.EntriesWithMessage("mail sent")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-9", entries[0]["request_id"])
	assert.Equal(t, "Welcome to Tasks", entries[0]["subject"])
	assert.NotContains(t, buf.String(), "new.user@example.com")
}

func TestLogMailer_Send_Invalid(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, NewLogMailer("a@b.co").Send(context.Background(), Message{}), ErrInvalidMessage)
}

func TestLogMailer_Send_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewLogMailer("a@b.co").Send(ctx, testMessage()), context.Canceled)
}

func TestWelcomeMessage(t *testing.T) {
	t.Parallel()

	msg := WelcomeMessage("a@b.co", "")
	assert.NoError(t, msg.Validate())
	assert.Contains(t, msg.Body, "Welcome.")
	assert.Contains(t, WelcomeMessage("a@b.co", "Ann").Body, "Welcome, Ann.")
}
