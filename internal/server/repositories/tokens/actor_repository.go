package tokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wsauth/internal/common"
	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/server/models"
)

const Table = "user_tokens"

type ActorRepository struct {
	ex dbclient.Executor
}

func NewActorRepository(ex dbclient.Executor) *ActorRepository {
	return &ActorRepository{ex: ex}
}

func (r *ActorRepository) Create(ctx context.Context, token *models.IssuedToken) error {
	values, err := dbclient.ToValues(token)
	if err != nil {
		return err
	}
	req := dbclient.Request{Table: Table, Action: dbclient.ActionInsert, Values: values}
	if err := dbclient.Exec(ctx, r.ex, req); err != nil {
		return fmt.Errorf("error storing token: %w", err)
	}
	return nil
}

func (r *ActorRepository) Find(ctx context.Context, jti string) (*models.IssuedToken, error) {
	req := dbclient.Request{Table: Table, Action: dbclient.ActionRetrieve}.
		Where(dbclient.Eq("jti", jti))

	rows, err := dbclient.Query[models.IssuedToken](ctx, r.ex, req)
	if err != nil {
		return nil, fmt.Errorf("error loading token: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	return &rows[0], nil
}

func (r *ActorRepository) Delete(ctx context.Context, jti string) error {
	req := dbclient.Request{Table: Table, Action: dbclient.ActionDelete}.
		Where(dbclient.Eq("jti", jti))
	if err := dbclient.Exec(ctx, r.ex, req); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}
