package verifications

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/server/models"
)

const Table = "email_verifications"

type ActorRepository struct {
	ex dbclient.Executor
}

func NewActorRepository(ex dbclient.Executor) *ActorRepository {
	return &ActorRepository{ex: ex}
}

func (r *ActorRepository) Replace(ctx context.Context, v *models.EmailVerification) error {
	del := dbclient.Request{Table: Table, Action: dbclient.ActionDelete}.
		Where(dbclient.Eq("uid", v.UID))
	if err := dbclient.Exec(ctx, r.ex, del); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	values, err := dbclient.ToValues(v)
	if err != nil {
		return err
	}
	ins := dbclient.Request{Table: Table, Action: dbclient.ActionInsert, Values: values}
	if err := dbclient.Exec(ctx, r.ex, ins); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
