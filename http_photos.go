package photostream

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// MaxTagsPerPhoto caps the tags accepted at upload time
const MaxTagsPerPhoto = 5

// RegisterPhotoRoutes mounts the photo, comment, rating, search, and
// profile endpoints. Every route goes through the protect middleware.
func RegisterPhotoRoutes[T any](app router.Router[T], protect router.MiddlewareFunc, opts ...PhotoControllerOption) {
	controller := NewPhotoController(opts...)

	app.Post(controller.Routes.Photos, protect(controller.Create)).
		SetName("photos.create")
	app.Get(controller.Routes.Photos, protect(controller.List)).
		SetName("photos.list")
	app.Get(fmt.Sprintf("%s/:id", controller.Routes.Photos), protect(controller.Show)).
		SetName("photos.show")
	app.Put(fmt.Sprintf("%s/:id", controller.Routes.Photos), protect(controller.Update)).
		SetName("photos.update")
	app.Delete(fmt.Sprintf("%s/:id", controller.Routes.Photos), protect(controller.Delete)).
		SetName("photos.delete")

	app.Post(fmt.Sprintf("%s/:id/comments", controller.Routes.Photos), protect(controller.CommentCreate)).
		SetName("photos.comments.create")
	app.Get(fmt.Sprintf("%s/:id/comments", controller.Routes.Photos), protect(controller.CommentList)).
		SetName("photos.comments.list")
	app.Put(fmt.Sprintf("%s/:id", controller.Routes.Comments), protect(controller.CommentUpdate)).
		SetName("comments.update")
	app.Delete(fmt.Sprintf("%s/:id", controller.Routes.Comments), protect(controller.CommentDelete)).
		SetName("comments.delete")

	app.Post(fmt.Sprintf("%s/:id/rating", controller.Routes.Photos), protect(controller.Rate)).
		SetName("photos.rate")

	app.Get(controller.Routes.Search, protect(controller.Search)).
		SetName("photos.search")

	app.Get(controller.Routes.Profile, protect(controller.ProfileShow)).
		SetName("profile.show")
	app.Put(controller.Routes.Profile, protect(controller.ProfileUpdate)).
		SetName("profile.update")
}

type PhotoControllerRoutes struct {
	Photos   string
	Comments string
	Search   string
	Profile  string
}

type PhotoController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Storage      PhotoStorage
	Activity     ActivitySink
	ContextKey   string
	Routes       *PhotoControllerRoutes
	ErrorHandler router.ErrorHandler
}

type PhotoControllerOption func(*PhotoController) *PhotoController

func NewPhotoController(opts ...PhotoControllerOption) *PhotoController {
	c := &PhotoController{
		Logger:       defLogger{},
		ErrorHandler: RenderError,
		Activity:     noopActivitySink{},
		ContextKey:   "user",
		Routes: &PhotoControllerRoutes{
			Photos:   "/photos",
			Comments: "/comments",
			Search:   "/search/photos",
			Profile:  "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in photo controller...")
	}

	if c.Storage == nil {
		panic("Missing PhotoStorage in photo controller...")
	}

	return c
}

func WithPhotoRepo(repo RepositoryManager) PhotoControllerOption {
	return func(c *PhotoController) *PhotoController {
		c.Repo = repo
		return c
	}
}

func WithPhotoStorage(storage PhotoStorage) PhotoControllerOption {
	return func(c *PhotoController) *PhotoController {
		c.Storage = storage
		return c
	}
}

func WithPhotoLogger(logger Logger) PhotoControllerOption {
	return func(c *PhotoController) *PhotoController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithPhotoActivitySink(sink ActivitySink) PhotoControllerOption {
	return func(c *PhotoController) *PhotoController {
		c.Activity = normalizeActivitySink(sink)
		return c
	}
}

func WithPhotoContextKey(key string) PhotoControllerOption {
	return func(c *PhotoController) *PhotoController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

// Create stores the uploaded image bytes and its photo record. The
// image travels as the request body; description and tags come in as
// query parameters.
func (a *PhotoController) Create(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryAuth, "invalid user id in token").
			WithCode(errors.CodeUnauthorized))
	}

	tagNames := ParseTagList(ctx.Query("tags", ""))
	if len(tagNames) > MaxTagsPerPhoto {
		return a.ErrorHandler(ctx, errors.New("too many tags", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"max": MaxTagsPerPhoto}))
	}

	url, err := a.Storage.Save(ctx.Context(), ctx.Query("filename", ""), ctx.Body())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	photo := &Photo{
		UserID:      userID,
		URL:         url,
		Description: ctx.Query("description", ""),
	}

	photo, err = a.Repo.Photos().CreateWithTags(ctx.Context(), photo, tagNames)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	a.recordActivity(ctx, ActivityEventPhotoUploaded, identity.ID(), map[string]any{
		"photo_id": photo.ID.String(),
	})

	return ctx.JSON(http.StatusCreated, photo)
}

func (a *PhotoController) List(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	userID := identity.ID()
	if requested := ctx.Query("user_id", ""); requested != "" {
		userID = requested
	}

	owner, err := uuid.Parse(userID)
	if err != nil {
		return a.ErrorHandler(ctx, errors.New("invalid user id", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest))
	}

	records, err := a.Repo.Photos().ListByUser(ctx.Context(), owner, ctx.QueryInt("limit", 25), ctx.QueryInt("offset", 0))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, records)
}

func (a *PhotoController) Show(ctx router.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	photo, err := a.Repo.Photos().GetWithRelations(ctx.Context(), id)
	if err != nil {
		return a.ErrorHandler(ctx, notFoundOrInternal(err, "photo not found"))
	}

	return ctx.JSON(http.StatusOK, photo)
}

// PhotoUpdatePayload changes the description and optionally swaps tags
type PhotoUpdatePayload struct {
	Description string   `form:"description" json:"description"`
	Tags        []string `form:"tags" json:"tags"`
}

// Validate will run validation rules
func (r PhotoUpdatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Description, validation.Length(0, 500)),
			validation.Field(&r.Tags, validation.Length(0, MaxTagsPerPhoto)),
		)
	}, "Invalid photo update payload")
}

func (a *PhotoController) Update(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	photo, err := a.Repo.Photos().GetWithRelations(ctx.Context(), id)
	if err != nil {
		return a.ErrorHandler(ctx, notFoundOrInternal(err, "photo not found"))
	}

	if !a.canEdit(identity, photo.UserID) {
		return a.ErrorHandler(ctx, ErrRoleForbidden)
	}

	payload := new(PhotoUpdatePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	photo, err = a.Repo.Photos().UpdateDescription(ctx.Context(), id, payload.Description)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if payload.Tags != nil {
		photo, err = a.Repo.Photos().ReplaceTags(ctx.Context(), id, payload.Tags)
		if err != nil {
			return a.ErrorHandler(ctx, err)
		}
	}

	return ctx.JSON(http.StatusOK, photo)
}

func (a *PhotoController) Delete(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	photo, err := a.Repo.Photos().GetWithRelations(ctx.Context(), id)
	if err != nil {
		return a.ErrorHandler(ctx, notFoundOrInternal(err, "photo not found"))
	}

	if !a.canModify(identity, photo.UserID) {
		return a.ErrorHandler(ctx, ErrRoleForbidden)
	}

	if err := a.Repo.Photos().Remove(ctx.Context(), id); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Storage.Remove(ctx.Context(), photo.URL); err != nil {
		a.Logger.Error("failed to remove photo file", "error", err, "url", photo.URL)
	}

	a.recordActivity(ctx, ActivityEventPhotoDeleted, identity.ID(), map[string]any{
		"photo_id": id.String(),
		"owner_id": photo.UserID.String(),
	})

	return ctx.JSON(http.StatusOK, map[string]string{
		"message": "Photo deleted",
	})
}

// CommentPayload is the create/update comment body
type CommentPayload struct {
	Content string `form:"content" json:"content"`
}

// Validate will run validation rules
func (r CommentPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Content, validation.Required, validation.Length(1, 500)),
		)
	}, "Invalid comment payload")
}

func (a *PhotoController) CommentCreate(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	photoID, err := parseIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryAuth, "invalid user id in token").
			WithCode(errors.CodeUnauthorized))
	}

	payload := new(CommentPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	// make sure the photo exists before attaching a comment
	if _, err := a.Repo.Photos().GetWithRelations(ctx.Context(), photoID); err != nil {
		return a.ErrorHandler(ctx, notFoundOrInternal(err, "photo not found"))
	}

	comment, err := a.Repo.Comments().Create(ctx.Context(), &Comment{
		ID:      uuid.New(),
		PhotoID: photoID,
		UserID:  userID,
		Content: payload.Content,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, comment)
}

func (a *PhotoController) CommentList(ctx router.Context) error {
	photoID, err := parseIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	records, err := a.Repo.Comments().ListByPhoto(ctx.Context(), photoID, ctx.QueryInt("limit", 25), ctx.QueryInt("offset", 0))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, records)
}

func (a *PhotoController) CommentUpdate(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	comment, err := a.Repo.Comments().GetByID(ctx.Context(), id.String())
	if err != nil {
		return a.ErrorHandler(ctx, notFoundOrInternal(err, "comment not found"))
	}

	// only the author may edit their comment
	if comment.UserID.String() != identity.ID() {
		return a.ErrorHandler(ctx, ErrRoleForbidden)
	}

	payload := new(CommentPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	comment, err = a.Repo.Comments().UpdateContent(ctx.Context(), id, payload.Content)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, comment)
}

func (a *PhotoController) CommentDelete(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	comment, err := a.Repo.Comments().GetByID(ctx.Context(), id.String())
	if err != nil {
		return a.ErrorHandler(ctx, notFoundOrInternal(err, "comment not found"))
	}

	if comment.UserID.String() != identity.ID() && !identity.Role().AtLeast(RoleModerator) {
		return a.ErrorHandler(ctx, ErrRoleForbidden)
	}

	if err := a.Repo.Comments().Remove(ctx.Context(), id); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	a.recordActivity(ctx, ActivityEventCommentRemoved, identity.ID(), map[string]any{
		"comment_id": id.String(),
		"author_id":  comment.UserID.String(),
	})

	return ctx.JSON(http.StatusOK, map[string]string{
		"message": "Comment deleted",
	})
}

// RatingPayload is a vote on a photo
type RatingPayload struct {
	Vote int `form:"vote" json:"vote"`
}

// Validate will run validation rules
func (r RatingPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Vote, validation.Required, validation.Min(MinVote), validation.Max(MaxVote)),
		)
	}, "Invalid rating payload")
}

func (a *PhotoController) Rate(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	photoID, err := parseIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryAuth, "invalid user id in token").
			WithCode(errors.CodeUnauthorized))
	}

	payload := new(RatingPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	photo, err := a.Repo.Photos().Rate(ctx.Context(), photoID, userID, payload.Vote)
	if err != nil {
		if errors.IsNotFound(err) {
			return a.ErrorHandler(ctx, notFoundOrInternal(err, "photo not found"))
		}
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, photo)
}

// Search matches photos by description or tag name. The rating filter
// and the created-date filter cannot be combined.
func (a *PhotoController) Search(ctx router.Context) error {
	filter := PhotoSearch{
		Term:   ctx.Query("q", ""),
		Limit:  ctx.QueryInt("limit", 25),
		Offset: ctx.QueryInt("offset", 0),
	}

	if raw := ctx.Query("min_rating", ""); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return a.ErrorHandler(ctx, errors.New("invalid min_rating", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest))
		}
		filter.MinRating = &val
	}

	if raw := ctx.Query("max_rating", ""); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return a.ErrorHandler(ctx, errors.New("invalid max_rating", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest))
		}
		filter.MaxRating = &val
	}

	if raw := ctx.Query("created_after", ""); raw != "" {
		val, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return a.ErrorHandler(ctx, errors.New("invalid created_after, expected RFC3339", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest))
		}
		filter.CreatedAfter = &val
	}

	if raw := ctx.Query("created_before", ""); raw != "" {
		val, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return a.ErrorHandler(ctx, errors.New("invalid created_before, expected RFC3339", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest))
		}
		filter.CreatedBefore = &val
	}

	records, err := a.Repo.Photos().Search(ctx.Context(), filter)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, records)
}

func (a *PhotoController) ProfileShow(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	user, err := a.Repo.Users().GetByEmail(ctx.Context(), identity.Email())
	if err != nil {
		return a.ErrorHandler(ctx, notFoundOrInternal(err, "user not found"))
	}

	return ctx.JSON(http.StatusOK, NewUserDTO(user))
}

// ProfileUpdatePayload changes mutable profile fields
type ProfileUpdatePayload struct {
	Username string `form:"username" json:"username"`
	Avatar   string `form:"avatar" json:"avatar"`
}

// Validate will run validation rules
func (r ProfileUpdatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Length(3, 50)),
			validation.Field(&r.Avatar, validation.Length(0, 500)),
		)
	}, "Invalid profile payload")
}

func (a *PhotoController) ProfileUpdate(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	payload := new(ProfileUpdatePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	user, err := a.Repo.Users().GetByEmail(ctx.Context(), identity.Email())
	if err != nil {
		return a.ErrorHandler(ctx, notFoundOrInternal(err, "user not found"))
	}

	if payload.Username != "" {
		user.Username = payload.Username
	}
	if payload.Avatar != "" {
		user.Avatar = payload.Avatar
	}

	user, err = a.Repo.Users().Update(ctx.Context(), user)
	if err != nil {
		if isUniqueViolation(err) {
			return a.ErrorHandler(ctx, ErrDuplicateUser.Clone().WithMetadata(map[string]any{
				"username": payload.Username,
			}))
		}
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, NewUserDTO(user))
}

// canEdit covers content changes: the owner, or an admin
func (a *PhotoController) canEdit(identity Identity, ownerID uuid.UUID) bool {
	if identity.ID() == ownerID.String() {
		return true
	}
	return identity.Role() == RoleAdmin
}

// canModify covers removal: moderators and admins may act on other
// users' content, editing stays with the owner and admins
func (a *PhotoController) canModify(identity Identity, ownerID uuid.UUID) bool {
	if identity.ID() == ownerID.String() {
		return true
	}
	return identity.Role().AtLeast(RoleModerator)
}

func (a *PhotoController) recordActivity(ctx router.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := a.Activity.Record(ctx.Context(), event); err != nil {
		a.Logger.Error("activity sink record error", "error", err)
	}
}

func parseIDParam(ctx router.Context) (uuid.UUID, error) {
	raw := ctx.Param("id", "")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid id parameter", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"id": raw})
	}
	return id, nil
}

func notFoundOrInternal(err error, msg string) error {
	if errors.IsNotFound(err) {
		return errors.New(msg, errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)
	}
	return err
}
