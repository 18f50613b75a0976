package domain

import (
	"time"

	"github.com/google/uuid"
)

type BlogStatus string

const (
	BlogStatusPending  BlogStatus = "pending"
	BlogStatusApproved BlogStatus = "approved"
	BlogStatusRejected BlogStatus = "rejected"
)

type Blog struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	Summary   *string    `db:"summary" json:"summary,omitempty"`
	Image     string     `db:"image" json:"image"`
	AuthorID  uuid.UUID  `db:"author_id" json:"authorId"`
	Status    BlogStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`

	AuthorName *string `db:"author_name" json:"authorName,omitempty"`
	AuthorRole *string `db:"author_role" json:"authorRole,omitempty"`
}

type BlogFields struct {
	Title   *string
	Body    *string
	Summary *string
	Image   *string
}
