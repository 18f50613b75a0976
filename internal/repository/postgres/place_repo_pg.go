package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

const placeColumns = `
	id, name, description, address, travel_styles, images,
	top_attractions, things_to_do, longitude, latitude,
	average_rating, review_count, created_at, updated_at
`

type PlaceRepository struct {
	db *sqlx.DB
}

func NewPlaceRepo(db *sqlx.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func (r *PlaceRepository) Create(ctx context.Context, place *domain.Place) (*domain.Place, error) {
	const query = `
		INSERT INTO places (
			name, description, address, travel_styles, images,
			top_attractions, things_to_do, longitude, latitude
		) VALUES (
			:name, :description, :address, :travel_styles, :images,
			:top_attractions, :things_to_do, :longitude, :latitude
		)
		RETURNING ` + placeColumns

	args := map[string]any{
		"name":            place.Name,
		"description":     place.Description,
		"address":         place.Address,
		"travel_styles":   place.TravelStyles,
		"images":          place.Images,
		"top_attractions": place.TopAttractions,
		"things_to_do":    place.ThingsToDo,
		"longitude":       place.Longitude,
		"latitude":        place.Latitude,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var created domain.Place
		if err = rows.StructScan(&created); err != nil {
			return nil, err
		}
		return &created, nil
	}
	return nil, sql.ErrNoRows
}

func (r *PlaceRepository) Update(ctx context.Context, id uuid.UUID, fields domain.PlaceFields) (*domain.Place, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", idx))
		args = append(args, *fields.Name)
		idx++
	}
	if fields.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, *fields.Description)
		idx++
	}
	if fields.Address != nil {
		setParts = append(setParts, fmt.Sprintf("address = $%d", idx))
		args = append(args, *fields.Address)
		idx++
	}
	if fields.TravelStyles != nil {
		setParts = append(setParts, fmt.Sprintf("travel_styles = $%d", idx))
		args = append(args, pq.StringArray(fields.TravelStyles))
		idx++
	}
	if fields.Images != nil {
		setParts = append(setParts, fmt.Sprintf("images = $%d", idx))
		args = append(args, pq.StringArray(fields.Images))
		idx++
	}
	if fields.TopAttractions != nil {
		setParts = append(setParts, fmt.Sprintf("top_attractions = $%d", idx))
		args = append(args, fields.TopAttractions)
		idx++
	}
	if fields.ThingsToDo != nil {
		setParts = append(setParts, fmt.Sprintf("things_to_do = $%d", idx))
		args = append(args, fields.ThingsToDo)
		idx++
	}
	if fields.Longitude != nil {
		setParts = append(setParts, fmt.Sprintf("longitude = $%d", idx))
		args = append(args, *fields.Longitude)
		idx++
	}
	if fields.Latitude != nil {
		setParts = append(setParts, fmt.Sprintf("latitude = $%d", idx))
		args = append(args, *fields.Latitude)
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE places
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setParts, ", "), idx, placeColumns)

	args = append(args, id)

	var place domain.Place
	if err := r.db.GetContext(ctx, &place, query, args...); err != nil {
		return nil, err
	}
	return &place, nil
}

// Delete removes the place together with its reviews. The review rows go
// through the foreign key cascade, so a single statement is enough.
func (r *PlaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Place, error) {
	const query = `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	var place domain.Place
	if err := r.db.GetContext(ctx, &place, query, id); err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *PlaceRepository) List(ctx context.Context, travelStyle string) ([]domain.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places`
	args := []any{}

	if trimmed := strings.TrimSpace(travelStyle); trimmed != "" {
		query += ` WHERE $1 = ANY(travel_styles)`
		args = append(args, trimmed)
	}
	query += ` ORDER BY created_at DESC`

	places := make([]domain.Place, 0)
	if err := r.db.SelectContext(ctx, &places, query, args...); err != nil {
		return nil, err
	}
	return places, nil
}

func (r *PlaceRepository) Search(ctx context.Context, query string) ([]domain.Place, error) {
	const sqlQuery = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE name ILIKE '%' || $1 || '%'
		   OR description ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`

	places := make([]domain.Place, 0)
	if err := r.db.SelectContext(ctx, &places, sqlQuery, strings.TrimSpace(query)); err != nil {
		return nil, err
	}
	return places, nil
}

func (r *PlaceRepository) TopRated(ctx context.Context, limit int) ([]domain.Place, error) {
	const query = `
		SELECT ` + placeColumns + `
		FROM places
		ORDER BY average_rating DESC, review_count DESC, name ASC
		LIMIT $1
	`

	places := make([]domain.Place, 0)
	if err := r.db.SelectContext(ctx, &places, query, limit); err != nil {
		return nil, err
	}
	return places, nil
}

// Nearby orders by great-circle distance from the given point and keeps
// everything within maxDistanceMeters. Distance is haversine over a 6371 km
// earth radius.
func (r *PlaceRepository) Nearby(ctx context.Context, lng, lat float64, maxDistanceMeters int) ([]domain.Place, error) {
	const query = `
		SELECT ` + placeColumns + `
		FROM (
			SELECT *,
				(6371000 * acos(
					LEAST(1.0,
						cos(radians($2)) * cos(radians(latitude)) *
						cos(radians(longitude) - radians($1)) +
						sin(radians($2)) * sin(radians(latitude))
					)
				)) AS distance
			FROM places
		) AS p
		WHERE distance <= $3
		ORDER BY distance ASC
	`

	places := make([]domain.Place, 0)
	if err := r.db.SelectContext(ctx, &places, query, lng, lat, maxDistanceMeters); err != nil {
		return nil, err
	}
	return places, nil
}

func (r *PlaceRepository) Recommended(ctx context.Context, excludeID uuid.UUID, travelStyles []string, limit int) ([]domain.Place, error) {
	const query = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE id <> $1 AND travel_styles && $2
		ORDER BY average_rating DESC, review_count DESC
		LIMIT $3
	`

	places := make([]domain.Place, 0)
	if err := r.db.SelectContext(ctx, &places, query, excludeID, pq.StringArray(travelStyles), limit); err != nil {
		return nil, err
	}
	return places, nil
}

func (r *PlaceRepository) UpdateRating(ctx context.Context, id uuid.UUID, averageRating float64, reviewCount int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE places
		SET average_rating = $2, review_count = $3, updated_at = NOW()
		WHERE id = $1
	`, id, averageRating, reviewCount)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.PlaceRepository = (*PlaceRepository)(nil)
