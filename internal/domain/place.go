package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type TravelStyle string

const (
	TravelStyleCity      TravelStyle = "City"
	TravelStyleFood      TravelStyle = "Food"
	TravelStyleTemple    TravelStyle = "Temple"
	TravelStyleAdventure TravelStyle = "Adventure"
)

func ValidTravelStyle(s string) bool {
	switch TravelStyle(s) {
	case TravelStyleCity, TravelStyleFood, TravelStyleTemple, TravelStyleAdventure:
		return true
	}
	return false
}

// Attraction is a named highlight of a place with an optional stored image path.
type Attraction struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type ThingToDo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type AttractionList []Attraction

func (l AttractionList) Value() (driver.Value, error) {
	if l == nil {
		l = AttractionList{}
	}
	return json.Marshal(l)
}

func (l *AttractionList) Scan(src any) error {
	return scanJSON(src, l)
}

type ThingToDoList []ThingToDo

func (l ThingToDoList) Value() (driver.Value, error) {
	if l == nil {
		l = ThingToDoList{}
	}
	return json.Marshal(l)
}

func (l *ThingToDoList) Scan(src any) error {
	return scanJSON(src, l)
}

func scanJSON(src, dest any) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return errors.New("unsupported jsonb source type")
	}
}

type Place struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Description    string         `db:"description" json:"description"`
	Address        string         `db:"address" json:"address"`
	TravelStyles   pq.StringArray `db:"travel_styles" json:"travelStyles"`
	Images         pq.StringArray `db:"images" json:"images"`
	TopAttractions AttractionList `db:"top_attractions" json:"topAttractions"`
	ThingsToDo     ThingToDoList  `db:"things_to_do" json:"thingsToDo"`
	Longitude      float64        `db:"longitude" json:"lng"`
	Latitude       float64        `db:"latitude" json:"lat"`
	AverageRating  float64        `db:"average_rating" json:"averageRating"`
	ReviewCount    int            `db:"review_count" json:"reviewCount"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// PlaceDetail is the detail-view projection: the place plus its live review
// aggregate, the reviews themselves, and rating-sorted recommendations that
// share a travel style.
type PlaceDetail struct {
	Place
	Reviews     []Review `json:"reviews"`
	Recommended []Place  `json:"recommended"`
}

// PlaceFields carries a partial update; nil means "leave unchanged".
type PlaceFields struct {
	Name           *string
	Description    *string
	Address        *string
	TravelStyles   []string
	Images         []string
	TopAttractions AttractionList
	ThingsToDo     ThingToDoList
	Longitude      *float64
	Latitude       *float64
}
