package photostream

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Photos() Photos
	Tags() Tags
	Comments() Comments
}

type mngr struct {
	db       *bun.DB
	users    Users
	photos   Photos
	tags     Tags
	comments Comments
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	tags := NewTagsRepository(db)
	return &mngr{
		db:       db,
		users:    NewUsersRepository(db),
		photos:   NewPhotosRepository(db, tags),
		tags:     tags,
		comments: NewCommentsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.photos == nil {
		return errors.New("repository photos should be initialized")
	}

	if m.tags == nil {
		return errors.New("repository tags should be initialized")
	}

	if m.comments == nil {
		return errors.New("repository comments should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Photos() Photos {
	return m.photos
}

func (m mngr) Tags() Tags {
	return m.tags
}

func (m mngr) Comments() Comments {
	return m.comments
}
