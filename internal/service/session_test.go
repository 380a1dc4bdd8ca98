package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/models"
)

func (env *testEnv) scheduleSession(t *testing.T, table *models.Table) *models.GameSession {
	t.Helper()

	session, err := env.tables.ScheduleSession(context.Background(), table.GMID, table.ID, ScheduleSessionCommand{
		Title:       "Session Zero",
		ScheduledAt: time.Now().Add(48 * time.Hour),
		DurationMin: 180,
	})
	require.NoError(t, err)
	return session
}

func TestSessions_Schedule_OnlyGM(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.register(t, "gm")
	player := env.register(t, "player")
	table := env.createTable(t, gm.ID)
	env.joinTable(t, table, player.ID)

	_, err := env.tables.ScheduleSession(ctx, player.ID, table.ID, ScheduleSessionCommand{
		Title:       "Rogue Session",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	session := env.scheduleSession(t, table)
	assert.Equal(t, models.SessionScheduled, session.Status)
	assert.Equal(t, table.ID, session.TableID)
}

func TestSessions_Schedule_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	gm := env.register(t, "gm")
	table := env.createTable(t, gm.ID)

	_, err := env.tables.ScheduleSession(context.Background(), gm.ID, table.ID, ScheduleSessionCommand{
		ScheduledAt: time.Now().Add(time.Hour),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSessions_Update_PatchSemantics(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.register(t, "gm")
	table := env.createTable(t, gm.ID)
	session := env.scheduleSession(t, table)

	updated, err := env.tables.UpdateSession(ctx, gm.ID, session.ID, UpdateSessionCommand{
		DurationMin: models.Patch[int]{Set: true, Value: 240},
	})
	require.NoError(t, err)
	assert.Equal(t, "Session Zero", updated.Title, "unsupplied field must stay untouched")
	assert.Equal(t, 240, updated.DurationMin)
}

func TestSessions_Update_CancelledSessionIsFrozen(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.register(t, "gm")
	table := env.createTable(t, gm.ID)
	session := env.scheduleSession(t, table)

	cancelled, err := env.tables.CancelSession(ctx, gm.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, cancelled.Status)

	_, err = env.tables.UpdateSession(ctx, gm.ID, session.ID, UpdateSessionCommand{
		Title: models.Patch[string]{Set: true, Value: "Too late"},
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotScheduled)

	_, err = env.tables.CancelSession(ctx, gm.ID, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotScheduled)
}

func TestSessions_SetIntent_MembersOnly(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.register(t, "gm")
	outsider := env.register(t, "outsider")
	table := env.createTable(t, gm.ID)
	session := env.scheduleSession(t, table)

	_, err := env.tables.SetIntent(ctx, outsider.ID, session.ID, SetIntentCommand{Status: models.IntentAttending})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSessions_SetIntent_UpsertAndValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.register(t, "gm")
	player := env.register(t, "player")
	table := env.createTable(t, gm.ID)
	env.joinTable(t, table, player.ID)
	session := env.scheduleSession(t, table)

	_, err := env.tables.SetIntent(ctx, player.ID, session.ID, SetIntentCommand{Status: "maybe"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	intent, err := env.tables.SetIntent(ctx, player.ID, session.ID, SetIntentCommand{Status: models.IntentAttending})
	require.NoError(t, err)
	assert.Equal(t, models.IntentAttending, intent.Status)

	// Setting again flips the existing row instead of inserting a second one.
	intent, err = env.tables.SetIntent(ctx, player.ID, session.ID, SetIntentCommand{Status: models.IntentDeclined})
	require.NoError(t, err)
	assert.Equal(t, models.IntentDeclined, intent.Status)
}

func TestSessions_SetIntent_CancelledSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.register(t, "gm")
	player := env.register(t, "player")
	table := env.createTable(t, gm.ID)
	env.joinTable(t, table, player.ID)
	session := env.scheduleSession(t, table)

	_, err := env.tables.CancelSession(ctx, gm.ID, session.ID)
	require.NoError(t, err)

	_, err = env.tables.SetIntent(ctx, player.ID, session.ID, SetIntentCommand{Status: models.IntentAttending})
	assert.ErrorIs(t, err, domain.ErrSessionNotScheduled)
}

func TestSessions_CheckIn(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	gm := env.register(t, "gm")
	player := env.register(t, "player")
	decliner := env.register(t, "decliner")
	table := env.createTable(t, gm.ID)
	env.joinTable(t, table, player.ID)
	env.joinTable(t, table, decliner.ID)
	session := env.scheduleSession(t, table)

	// No intent recorded at all.
	_, err := env.tables.CheckIn(ctx, player.ID, session.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.tables.SetIntent(ctx, decliner.ID, session.ID, SetIntentCommand{Status: models.IntentDeclined})
	require.NoError(t, err)
	_, err = env.tables.CheckIn(ctx, decliner.ID, session.ID)
	assert.ErrorIs(t, err, domain.ErrNotAttending)

	_, err = env.tables.SetIntent(ctx, player.ID, session.ID, SetIntentCommand{Status: models.IntentAttending})
	require.NoError(t, err)

	intent, err := env.tables.CheckIn(ctx, player.ID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, intent.CheckedInAt)
	assert.WithinDuration(t, time.Now(), *intent.CheckedInAt, time.Minute)
}

func TestSessions_ListSessions_UnknownTable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.tables.ListSessions(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
