package photostream

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credential record backing authentication and the owner
// of photos, comments, and rating votes.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           Role       `bun:"user_role,notnull" json:"user_role,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	Avatar         string     `bun:"avatar" json:"avatar,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	Confirmed      bool       `bun:"confirmed" json:"confirmed,omitempty"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`

	Photos   []*Photo   `bun:"rel:has-many,join:id=user_id" json:"photos,omitempty"`
	Comments []*Comment `bun:"rel:has-many,join:id=user_id" json:"comments,omitempty"`
}

// Photo is a stored image. Rating holds the denormalized average of
// its votes, recomputed whenever a vote lands.
type Photo struct {
	bun.BaseModel `bun:"table:photos,alias:pht"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	URL           string     `bun:"url,notnull" json:"url,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Rating        float64    `bun:"rating" json:"rating"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`

	User     *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Tags     []*Tag     `bun:"m2m:photo_tags,join:Photo=Tag" json:"tags,omitempty"`
	Comments []*Comment `bun:"rel:has-many,join:id=photo_id" json:"comments,omitempty"`
}

// Tag labels photos. Names are unique and stored lowercased.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tag"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string    `bun:"name,notnull,unique" json:"name,omitempty"`
}

// PhotoTag joins photos and tags
type PhotoTag struct {
	bun.BaseModel `bun:"table:photo_tags,alias:ptg"`
	PhotoID       uuid.UUID `bun:"photo_id,pk,type:uuid" json:"photo_id,omitempty"`
	Photo         *Photo    `bun:"rel:belongs-to,join:photo_id=id" json:"photo,omitempty"`
	TagID         uuid.UUID `bun:"tag_id,pk,type:uuid" json:"tag_id,omitempty"`
	Tag           *Tag      `bun:"rel:belongs-to,join:tag_id=id" json:"tag,omitempty"`
}

// Comment is user feedback attached to a photo
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PhotoID       uuid.UUID  `bun:"photo_id,notnull,type:uuid" json:"photo_id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	User  *User  `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Photo *Photo `bun:"rel:belongs-to,join:photo_id=id" json:"photo,omitempty"`
}

// Vote bounds, inclusive
const (
	MinVote = 1
	MaxVote = 5
)

// Rating is a single user's vote on a photo. One vote per user per
// photo, enforced by a unique (photo_id, user_id) constraint. Authors
// cannot vote on their own photos.
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:rtg"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PhotoID       uuid.UUID  `bun:"photo_id,notnull,type:uuid" json:"photo_id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Vote          int        `bun:"vote,notnull" json:"vote,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
