package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/models"
)

func TestRepo_Membership_Lifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	gm := createTestUser(t, r, "gm")
	player := createTestUser(t, r, "player")
	table := createTestTable(t, r, gm.ID)

	ok, err := r.IsMember(ctx, table.ID, player.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.CreateMembership(ctx, &models.TableMembership{TableID: table.ID, UserID: player.ID}))

	ok, err = r.IsMember(ctx, table.ID, player.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := r.ListMembers(ctx, table.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, player.ID, members[0].ID)

	require.NoError(t, r.DeleteMembership(ctx, table.ID, player.ID))

	err = r.DeleteMembership(ctx, table.ID, player.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_HasPendingRequest_OnlyCountsPending(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	gm := createTestUser(t, r, "gm")
	player := createTestUser(t, r, "player")
	table := createTestTable(t, r, gm.ID)

	req := &models.TableRequest{
		ID: uuid.New(), TableID: table.ID, UserID: player.ID, Status: models.RequestRejected,
	}
	require.NoError(t, r.CreateRequest(ctx, req))

	ok, err := r.HasPendingRequest(ctx, table.ID, player.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepo_FindTableByID_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)

	_, err := r.FindTableByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
