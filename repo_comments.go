package photostream

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Comments interface {
	repository.Repository[*Comment]

	ListByPhoto(ctx context.Context, photoID uuid.UUID, limit, offset int) ([]*Comment, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*Comment, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type comments struct {
	repository.Repository[*Comment]
	db *bun.DB
}

var _ Comments = (*comments)(nil)

func NewCommentsRepository(db *bun.DB) Comments {
	repo := repository.NewRepository[*Comment](db, repository.ModelHandlers[*Comment]{
		NewRecord: func() *Comment { return &Comment{} },
		GetID: func(c *Comment) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Comment, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &comments{
		Repository: repo,
		db:         db,
	}
}

func (a *comments) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*Comment, error) {
	record := &Comment{
		ID:      id,
		Content: content,
	}

	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (a *comments) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Comment)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *comments) ListByPhoto(ctx context.Context, photoID uuid.UUID, limit, offset int) ([]*Comment, error) {
	if limit <= 0 {
		limit = 25
	}

	var records []*Comment
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.photo_id = ?", photoID).
		OrderExpr("?TableAlias.created_at ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
