package photostream

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Tags interface {
	repository.Repository[*Tag]

	GetOrCreate(ctx context.Context, name string) (*Tag, error)
	GetOrCreateTx(ctx context.Context, tx bun.IDB, name string) (*Tag, error)
	GetOrCreateAll(ctx context.Context, names []string) ([]*Tag, error)
	GetOrCreateAllTx(ctx context.Context, tx bun.IDB, names []string) ([]*Tag, error)
}

type tags struct {
	repository.Repository[*Tag]
	db *bun.DB
}

var _ Tags = (*tags)(nil)

func NewTagsRepository(db *bun.DB) Tags {
	repo := repository.NewRepository[*Tag](db, repository.ModelHandlers[*Tag]{
		NewRecord: func() *Tag { return &Tag{} },
		GetID: func(t *Tag) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Tag, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &tags{
		Repository: repo,
		db:         db,
	}
}

func (a *tags) GetOrCreate(ctx context.Context, name string) (*Tag, error) {
	return a.GetOrCreateTx(ctx, a.db, name)
}

// GetOrCreateTx resolves a tag by its normalized name, creating it on
// first use. Names are trimmed and lowercased so "Sunset" and "sunset"
// are the same tag.
func (a *tags) GetOrCreateTx(ctx context.Context, tx bun.IDB, name string) (*Tag, error) {
	normalized := NormalizeTagName(name)

	record := &Tag{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", normalized).
		Limit(1).
		Scan(ctx)

	if err == nil {
		return record, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record = &Tag{
		ID:   uuid.New(),
		Name: normalized,
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *tags) GetOrCreateAll(ctx context.Context, names []string) ([]*Tag, error) {
	return a.GetOrCreateAllTx(ctx, a.db, names)
}

func (a *tags) GetOrCreateAllTx(ctx context.Context, tx bun.IDB, names []string) ([]*Tag, error) {
	records := make([]*Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		normalized := NormalizeTagName(name)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true

		tag, err := a.GetOrCreateTx(ctx, tx, normalized)
		if err != nil {
			return nil, err
		}
		records = append(records, tag)
	}

	return records, nil
}

// NormalizeTagName trims and lowercases a tag name
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseTagList splits a comma-separated tag list into normalized names
func ParseTagList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if normalized := NormalizeTagName(p); normalized != "" {
			names = append(names, normalized)
		}
	}

	return names
}
