package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wsauth/internal/common"
	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/server/models"
)

const (
	AuthUsersTable = "auth_users"
	ProfilesTable  = "users"
)

type ActorRepository struct {
	ex dbclient.Executor
}

func NewActorRepository(ex dbclient.Executor) *ActorRepository {
	return &ActorRepository{ex: ex}
}

func (r *ActorRepository) FindByIdentity(ctx context.Context, email, username string) ([]models.AuthUser, error) {
	req := dbclient.Request{Table: AuthUsersTable, Action: dbclient.ActionRetrieve}.
		Where(dbclient.Or(
			map[string]any{"email": email},
			map[string]any{"username": username},
		))

	rows, err := dbclient.Query[models.AuthUser](ctx, r.ex, req)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rows, nil
}

func (r *ActorRepository) FindAuthUser(ctx context.Context, by map[string]any) (*models.AuthUser, error) {
	req := dbclient.Request{Table: AuthUsersTable, Action: dbclient.ActionRetrieve}.
		Where(dbclient.Single(by))

	rows, err := dbclient.Query[models.AuthUser](ctx, r.ex, req)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	// The actor always answers with a list; the first row is canonical.
	return &rows[0], nil
}

func (r *ActorRepository) CreateAuthUser(ctx context.Context, user *models.AuthUser) error {
	return r.insert(ctx, AuthUsersTable, user)
}

func (r *ActorRepository) DeleteAuthUser(ctx context.Context, uid string) error {
	req := dbclient.Request{Table: AuthUsersTable, Action: dbclient.ActionDelete}.
		Where(dbclient.Eq("uid", uid))

	if err := dbclient.Exec(ctx, r.ex, req); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ActorRepository) FindProfile(ctx context.Context, uid string) (*models.User, error) {
	req := dbclient.Request{Table: ProfilesTable, Action: dbclient.ActionRetrieve}.
		Where(dbclient.Eq("uid", uid))

	rows, err := dbclient.Query[models.User](ctx, r.ex, req)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	return &rows[0], nil
}

func (r *ActorRepository) CreateProfile(ctx context.Context, user *models.User) error {
	return r.insert(ctx, ProfilesTable, user)
}

func (r *ActorRepository) insert(ctx context.Context, table string, record any) error {
	values, err := dbclient.ToValues(record)
	if err != nil {
		return err
	}
	req := dbclient.Request{Table: table, Action: dbclient.ActionInsert, Values: values}
	if err := dbclient.Exec(ctx, r.ex, req); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
