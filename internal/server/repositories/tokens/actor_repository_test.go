package tokens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wsauth/internal/common"
	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/server/models"
	"github.com/dmitrijs2005/wsauth/internal/testutil/actorstub"
)

func TestCreateFindDelete(t *testing.T) {
	actor := actorstub.New(actorstub.ModeTables, nil)
	repo := NewActorRepository(actor)
	ctx := context.Background()

	tok := &models.IssuedToken{JTI: "j-1", UID: "u-1", IssuedAt: 1700000000, ExpiresAt: 1731536000}
	require.NoError(t, repo.Create(ctx, tok))

	got, err := repo.Find(ctx, "j-1")
	require.NoError(t, err)
	assert.Equal(t, tok, got)

	require.NoError(t, repo.Delete(ctx, "j-1"))
	_, err = repo.Find(ctx, "j-1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	// Revoking twice is fine.
	require.NoError(t, repo.Delete(ctx, "j-1"))
}

func TestCreate_ActorError(t *testing.T) {
	actor := actorstub.New(actorstub.ModeTables, nil)
	actor.FailOn(Table, dbclient.ActionInsert, "no space")
	repo := NewActorRepository(actor)

	err := repo.Create(context.Background(), &models.IssuedToken{JTI: "j-1"})
	var actorErr *dbclient.ActorError
	require.ErrorAs(t, err, &actorErr)
	assert.Equal(t, Table, actorErr.Table)
}
