package photostream

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PhotoSearch narrows a photo search. Term matches the description or
// any tag name. The rating bounds and the created-date bounds are
// mutually exclusive filters.
type PhotoSearch struct {
	Term          string
	MinRating     *float64
	MaxRating     *float64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// Validate rejects searches combining the rating filter with the
// created-date filter
func (s PhotoSearch) Validate() error {
	hasRating := s.MinRating != nil || s.MaxRating != nil
	hasDate := s.CreatedAfter != nil || s.CreatedBefore != nil

	if hasRating && hasDate {
		return ErrFilterConflict
	}

	return nil
}

type Photos interface {
	repository.Repository[*Photo]

	CreateWithTags(ctx context.Context, photo *Photo, tagNames []string) (*Photo, error)
	GetWithRelations(ctx context.Context, id uuid.UUID) (*Photo, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Photo, error)
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*Photo, error)
	ReplaceTags(ctx context.Context, id uuid.UUID, tagNames []string) (*Photo, error)
	Rate(ctx context.Context, photoID, userID uuid.UUID, vote int) (*Photo, error)
	Search(ctx context.Context, filter PhotoSearch) ([]*Photo, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type photos struct {
	repository.Repository[*Photo]
	db   *bun.DB
	tags Tags
}

var _ Photos = (*photos)(nil)

func NewPhotosRepository(db *bun.DB, tagsRepo Tags) Photos {
	repo := repository.NewRepository[*Photo](db, repository.ModelHandlers[*Photo]{
		NewRecord: func() *Photo { return &Photo{} },
		GetID: func(p *Photo) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Photo, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &photos{
		Repository: repo,
		db:         db,
		tags:       tagsRepo,
	}
}

// CreateWithTags inserts the photo and links its tags in a single
// transaction
func (a *photos) CreateWithTags(ctx context.Context, photo *Photo, tagNames []string) (*Photo, error) {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}

	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := a.Repository.CreateTx(ctx, tx, photo)
		if err != nil {
			return err
		}
		photo = record

		return a.linkTagsTx(ctx, tx, photo, tagNames)
	})

	if err != nil {
		return nil, err
	}

	return a.GetWithRelations(ctx, photo.ID)
}

func (a *photos) linkTagsTx(ctx context.Context, tx bun.Tx, photo *Photo, tagNames []string) error {
	if len(tagNames) == 0 {
		return nil
	}

	records, err := a.tags.GetOrCreateAllTx(ctx, tx, tagNames)
	if err != nil {
		return err
	}

	links := make([]*PhotoTag, 0, len(records))
	for _, tag := range records {
		links = append(links, &PhotoTag{
			PhotoID: photo.ID,
			TagID:   tag.ID,
		})
	}

	if len(links) == 0 {
		return nil
	}

	_, err = tx.NewInsert().Model(&links).Exec(ctx)
	return err
}

func (a *photos) GetWithRelations(ctx context.Context, id uuid.UUID) (*Photo, error) {
	record := &Photo{}
	err := a.db.NewSelect().
		Model(record).
		Relation("User").
		Relation("Tags").
		Relation("Comments").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *photos) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Photo, error) {
	if limit <= 0 {
		limit = 25
	}

	var records []*Photo
	err := a.db.NewSelect().
		Model(&records).
		Relation("Tags").
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *photos) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*Photo, error) {
	record := &Photo{
		ID:          id,
		Description: description,
	}

	if _, err := a.Repository.Update(ctx, record, repository.UpdateByID(id.String())); err != nil {
		return nil, err
	}

	return a.GetWithRelations(ctx, id)
}

// ReplaceTags swaps the photo's tag set for the given names
func (a *photos) ReplaceTags(ctx context.Context, id uuid.UUID, tagNames []string) (*Photo, error) {
	photo, err := a.GetWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}

	err = a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PhotoTag)(nil)).
			Where("photo_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		return a.linkTagsTx(ctx, tx, photo, tagNames)
	})

	if err != nil {
		return nil, err
	}

	return a.GetWithRelations(ctx, id)
}

// Rate records a user's vote and recomputes the photo's average inside
// one transaction. A second vote from the same user replaces the first.
// Authors cannot vote on their own photos.
func (a *photos) Rate(ctx context.Context, photoID, userID uuid.UUID, vote int) (*Photo, error) {
	if vote < MinVote || vote > MaxVote {
		return nil, goerrors.New("vote must be between 1 and 5", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"vote": vote})
	}

	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		photo := &Photo{}
		err := tx.NewSelect().
			Model(photo).
			Where("?TableAlias.id = ?", photoID).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				return repository.NewRecordNotFound().
					WithMetadata(map[string]any{"id": photoID.String()})
			}
			return err
		}

		if photo.UserID == userID {
			return ErrSelfRating
		}

		rating := &Rating{
			ID:      uuid.New(),
			PhotoID: photoID,
			UserID:  userID,
			Vote:    vote,
		}

		if _, err := tx.NewInsert().
			Model(rating).
			On("CONFLICT (photo_id, user_id) DO UPDATE").
			Set("vote = EXCLUDED.vote").
			Exec(ctx); err != nil {
			return err
		}

		var avg float64
		if err := tx.NewSelect().
			Model((*Rating)(nil)).
			ColumnExpr("COALESCE(AVG(vote), 0)").
			Where("photo_id = ?", photoID).
			Scan(ctx, &avg); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*Photo)(nil)).
			Set("rating = ?", avg).
			Where("id = ?", photoID).
			Exec(ctx)

		return err
	})

	if err != nil {
		return nil, err
	}

	return a.GetWithRelations(ctx, photoID)
}

// Remove soft deletes a photo. The photo's comments, ratings, and tag
// links stay behind the soft delete.
func (a *photos) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Photo)(nil)).
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

// Search finds photos whose description or tag names match the term,
// optionally narrowed by rating bounds or a created-date window
func (a *photos) Search(ctx context.Context, filter PhotoSearch) ([]*Photo, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 25
	}

	var records []*Photo
	q := a.db.NewSelect().
		Model(&records).
		Relation("Tags").
		Relation("User")

	if term := strings.TrimSpace(filter.Term); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		q = q.Where(`LOWER(?TableAlias.description) LIKE ? OR ?TableAlias.id IN (
			SELECT ptg.photo_id FROM photo_tags AS ptg
			JOIN tags AS tag ON tag.id = ptg.tag_id
			WHERE tag.name LIKE ?
		)`, pattern, pattern)
	}

	if filter.MinRating != nil {
		q = q.Where("?TableAlias.rating >= ?", *filter.MinRating)
	}
	if filter.MaxRating != nil {
		q = q.Where("?TableAlias.rating <= ?", *filter.MaxRating)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("?TableAlias.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("?TableAlias.created_at <= ?", *filter.CreatedBefore)
	}

	err := q.
		OrderExpr("?TableAlias.created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
