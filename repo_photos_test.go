package photostream_test

import (
	"context"
	"testing"
	"time"

	photostream "github.com/goliatone/go-photostream"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPhotosCreateWithTags(t *testing.T) {
	repo := setupRepos(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")

	photo, err := repo.Photos().CreateWithTags(ctx, &photostream.Photo{
		UserID:      owner.ID,
		URL:         "/uploads/sunset.jpg",
		Description: "golden hour at the beach",
	}, []string{"Sunset", "beach", "SUNSET"})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, photo.ID)
	assert.Equal(t, owner.ID, photo.UserID)

	// duplicate names collapse into one normalized tag
	names := tagNames(photo.Tags)
	assert.ElementsMatch(t, []string{"sunset", "beach"}, names)
	assert.NotNil(t, photo.User)
}

func TestPhotosGetWithRelations(t *testing.T) {
	repo := setupRepos(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")
	commenter := createTestUser(t, repo, "commenter@example.com")
	photo := createTestPhoto(t, repo, owner, "a pier", "pier")

	_, err := repo.Comments().Create(ctx, &photostream.Comment{
		ID:      uuid.New(),
		PhotoID: photo.ID,
		UserID:  commenter.ID,
		Content: "nice framing",
	})
	assert.NoError(t, err)

	loaded, err := repo.Photos().GetWithRelations(ctx, photo.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"pier"}, tagNames(loaded.Tags))
	assert.Len(t, loaded.Comments, 1)
	assert.Equal(t, owner.ID, loaded.User.ID)

	_, err = repo.Photos().GetWithRelations(ctx, uuid.New())
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestPhotosListByUser(t *testing.T) {
	repo := setupRepos(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")
	other := createTestUser(t, repo, "other@example.com")

	createTestPhoto(t, repo, owner, "one")
	createTestPhoto(t, repo, owner, "two")
	createTestPhoto(t, repo, other, "theirs")

	photos, err := repo.Photos().ListByUser(ctx, owner.ID, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, photos, 2)

	photos, err = repo.Photos().ListByUser(ctx, owner.ID, 1, 0)
	assert.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestPhotosUpdateDescription(t *testing.T) {
	repo := setupRepos(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")
	photo := createTestPhoto(t, repo, owner, "before", "city")

	updated, err := repo.Photos().UpdateDescription(ctx, photo.ID, "after")
	assert.NoError(t, err)
	assert.Equal(t, "after", updated.Description)
	// tags survive a description update
	assert.Equal(t, []string{"city"}, tagNames(updated.Tags))
}

func TestPhotosReplaceTags(t *testing.T) {
	repo := setupRepos(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")
	photo := createTestPhoto(t, repo, owner, "tagged", "old", "stale")

	updated, err := repo.Photos().ReplaceTags(ctx, photo.ID, []string{"Fresh", "new"})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"fresh", "new"}, tagNames(updated.Tags))

	cleared, err := repo.Photos().ReplaceTags(ctx, photo.ID, nil)
	assert.NoError(t, err)
	assert.Empty(t, cleared.Tags)

	_, err = repo.Photos().ReplaceTags(ctx, uuid.New(), []string{"ghost"})
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestPhotosRate(t *testing.T) {
	repo := setupRepos(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")
	alice := createTestUser(t, repo, "alice@example.com")
	bob := createTestUser(t, repo, "bob@example.com")
	photo := createTestPhoto(t, repo, owner, "rated")

	t.Run("first vote sets the average", func(t *testing.T) {
		rated, err := repo.Photos().Rate(ctx, photo.ID, alice.ID, 5)
		assert.NoError(t, err)
		assert.InDelta(t, 5.0, rated.Rating, 0.001)
	})

	t.Run("second voter moves the average", func(t *testing.T) {
		rated, err := repo.Photos().Rate(ctx, photo.ID, bob.ID, 3)
		assert.NoError(t, err)
		assert.InDelta(t, 4.0, rated.Rating, 0.001)
	})

	t.Run("revoting replaces the previous vote", func(t *testing.T) {
		rated, err := repo.Photos().Rate(ctx, photo.ID, alice.ID, 1)
		assert.NoError(t, err)
		assert.InDelta(t, 2.0, rated.Rating, 0.001)
	})

	t.Run("authors cannot rate their own photo", func(t *testing.T) {
		_, err := repo.Photos().Rate(ctx, photo.ID, owner.ID, 5)
		assert.ErrorIs(t, err, photostream.ErrSelfRating)
	})

	t.Run("vote bounds", func(t *testing.T) {
		_, err := repo.Photos().Rate(ctx, photo.ID, alice.ID, 0)
		assert.Error(t, err)

		_, err = repo.Photos().Rate(ctx, photo.ID, alice.ID, 6)
		assert.Error(t, err)
	})

	t.Run("unknown photo", func(t *testing.T) {
		_, err := repo.Photos().Rate(ctx, uuid.New(), alice.ID, 3)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestPhotosSearch(t *testing.T) {
	repo := setupRepos(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")
	voter := createTestUser(t, repo, "voter@example.com")

	beach := createTestPhoto(t, repo, owner, "golden hour at the beach", "sunset")
	city := createTestPhoto(t, repo, owner, "city lights", "night")
	createTestPhoto(t, repo, owner, "foggy morning")

	_, err := repo.Photos().Rate(ctx, beach.ID, voter.ID, 5)
	assert.NoError(t, err)
	_, err = repo.Photos().Rate(ctx, city.ID, voter.ID, 2)
	assert.NoError(t, err)

	t.Run("term matches descriptions", func(t *testing.T) {
		results, err := repo.Photos().Search(ctx, photostream.PhotoSearch{Term: "BEACH"})
		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, beach.ID, results[0].ID)
	})

	t.Run("term matches tag names", func(t *testing.T) {
		results, err := repo.Photos().Search(ctx, photostream.PhotoSearch{Term: "night"})
		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, city.ID, results[0].ID)
	})

	t.Run("rating bounds", func(t *testing.T) {
		min := 4.0
		results, err := repo.Photos().Search(ctx, photostream.PhotoSearch{MinRating: &min})
		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, beach.ID, results[0].ID)

		max := 3.0
		min = 1.0
		results, err = repo.Photos().Search(ctx, photostream.PhotoSearch{MinRating: &min, MaxRating: &max})
		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, city.ID, results[0].ID)
	})

	t.Run("no term returns everything up to the limit", func(t *testing.T) {
		results, err := repo.Photos().Search(ctx, photostream.PhotoSearch{})
		assert.NoError(t, err)
		assert.Len(t, results, 3)

		results, err = repo.Photos().Search(ctx, photostream.PhotoSearch{Limit: 2})
		assert.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("rating and date filters are mutually exclusive", func(t *testing.T) {
		min := 1.0
		after := time.Now().Add(-time.Hour)
		_, err := repo.Photos().Search(ctx, photostream.PhotoSearch{
			MinRating:    &min,
			CreatedAfter: &after,
		})
		assert.ErrorIs(t, err, photostream.ErrFilterConflict)
	})
}

func TestPhotosRemove(t *testing.T) {
	repo := setupRepos(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")
	photo := createTestPhoto(t, repo, owner, "doomed")

	assert.NoError(t, repo.Photos().Remove(ctx, photo.ID))

	_, err := repo.Photos().GetWithRelations(ctx, photo.ID)
	assert.True(t, repository.IsRecordNotFound(err))

	// the soft delete already hid the row
	err = repo.Photos().Remove(ctx, photo.ID)
	assert.True(t, repository.IsRecordNotFound(err))
}

func tagNames(tags []*photostream.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}
