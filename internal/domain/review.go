package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PlaceID   uuid.UUID `db:"place_id" json:"placeId"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	ReviewerName *string `db:"reviewer_name" json:"reviewerName,omitempty"`
}

// ReviewAggregate is the derived pair persisted onto the place after every
// review mutation, and served live on the place detail view.
type ReviewAggregate struct {
	PlaceID       uuid.UUID `json:"placeId"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
}
