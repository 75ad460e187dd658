package repomanager

import (
	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/wsauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/wsauth/internal/server/repositories/verifications"
)

// RepositoryManager builds repositories bound to an executor, usually the
// shared database actor client.
type RepositoryManager interface {
	Users(ex dbclient.Executor) users.Repository
	Tokens(ex dbclient.Executor) tokens.Repository
	Verifications(ex dbclient.Executor) verifications.Repository
}

type ActorRepositoryManager struct{}

func NewActorRepositoryManager() *ActorRepositoryManager {
	return &ActorRepositoryManager{}
}

func (m *ActorRepositoryManager) Users(ex dbclient.Executor) users.Repository {
	return users.NewActorRepository(ex)
}

func (m *ActorRepositoryManager) Tokens(ex dbclient.Executor) tokens.Repository {
	return tokens.NewActorRepository(ex)
}

func (m *ActorRepositoryManager) Verifications(ex dbclient.Executor) verifications.Repository {
	return verifications.NewActorRepository(ex)
}
