package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	const query = `
		INSERT INTO reviews (place_id, user_id, rating, comment)
		VALUES (:place_id, :user_id, :rating, :comment)
		RETURNING id, place_id, user_id, rating, comment, created_at, updated_at
	`

	args := map[string]any{
		"place_id": review.PlaceID,
		"user_id":  review.UserID,
		"rating":   review.Rating,
		"comment":  review.Comment,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var created domain.Review
		if err = rows.StructScan(&created); err != nil {
			return nil, err
		}
		return &created, nil
	}
	return nil, sql.ErrNoRows
}

func (r *ReviewRepository) Update(ctx context.Context, id uuid.UUID, rating *int, comment *string) (*domain.Review, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if rating != nil {
		setParts = append(setParts, fmt.Sprintf("rating = $%d", idx))
		args = append(args, *rating)
		idx++
	}
	if comment != nil {
		setParts = append(setParts, fmt.Sprintf("comment = $%d", idx))
		args = append(args, *comment)
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE reviews
		SET %s
		WHERE id = $%d
		RETURNING id, place_id, user_id, rating, comment, created_at, updated_at
	`, strings.Join(setParts, ", "), idx)

	args = append(args, id)

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, args...); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
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

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	const query = `
		SELECT id, place_id, user_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByPlace(ctx context.Context, placeID uuid.UUID) ([]domain.Review, error) {
	const query = `
		SELECT
			r.id, r.place_id, r.user_id, r.rating, r.comment,
			r.created_at, r.updated_at,
			u.name AS reviewer_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.place_id = $1
		ORDER BY r.created_at DESC
	`

	reviews := make([]domain.Review, 0)
	if err := r.db.SelectContext(ctx, &reviews, query, placeID); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AggregateByPlace recomputes count and mean rating from the review rows
// themselves, so the stored pair on the place can always be rebuilt from
// source.
func (r *ReviewRepository) AggregateByPlace(ctx context.Context, placeID uuid.UUID) (*domain.ReviewAggregate, error) {
	const query = `
		SELECT
			COALESCE(AVG(rating)::float8, 0) AS average_rating,
			COUNT(id)::int AS review_count
		FROM reviews
		WHERE place_id = $1
	`

	var row struct {
		AverageRating float64 `db:"average_rating"`
		ReviewCount   int     `db:"review_count"`
	}
	if err := r.db.GetContext(ctx, &row, query, placeID); err != nil {
		return nil, err
	}
	return &domain.ReviewAggregate{
		PlaceID:       placeID,
		AverageRating: row.AverageRating,
		ReviewCount:   row.ReviewCount,
	}, nil
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)
