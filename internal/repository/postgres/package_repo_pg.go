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

const packageColumns = `
	id, title, description, price, duration, image,
	created_by, bookings_count, created_at, updated_at
`

type PackageRepository struct {
	db *sqlx.DB
}

func NewPackageRepo(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Create(ctx context.Context, pkg *domain.TravelPackage) (*domain.TravelPackage, error) {
	const query = `
		INSERT INTO travel_packages (title, description, price, duration, image, created_by)
		VALUES (:title, :description, :price, :duration, :image, :created_by)
		RETURNING ` + packageColumns

	args := map[string]any{
		"title":       pkg.Title,
		"description": pkg.Description,
		"price":       pkg.Price,
		"duration":    pkg.Duration,
		"image":       nullString(pkg.Image),
		"created_by":  pkg.CreatedBy,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var created domain.TravelPackage
		if err = rows.StructScan(&created); err != nil {
			return nil, err
		}
		return &created, nil
	}
	return nil, sql.ErrNoRows
}

func (r *PackageRepository) Update(ctx context.Context, id uuid.UUID, fields domain.PackageFields) (*domain.TravelPackage, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", idx))
		args = append(args, *fields.Title)
		idx++
	}
	if fields.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, *fields.Description)
		idx++
	}
	if fields.Price != nil {
		setParts = append(setParts, fmt.Sprintf("price = $%d", idx))
		args = append(args, *fields.Price)
		idx++
	}
	if fields.Duration != nil {
		setParts = append(setParts, fmt.Sprintf("duration = $%d", idx))
		args = append(args, *fields.Duration)
		idx++
	}
	if fields.Image != nil {
		setParts = append(setParts, fmt.Sprintf("image = $%d", idx))
		args = append(args, nullString(fields.Image))
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE travel_packages
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setParts, ", "), idx, packageColumns)

	args = append(args, id)

	var pkg domain.TravelPackage
	if err := r.db.GetContext(ctx, &pkg, query, args...); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM travel_packages WHERE id = $1`, id)
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

func (r *PackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TravelPackage, error) {
	const query = `SELECT ` + packageColumns + ` FROM travel_packages WHERE id = $1`

	var pkg domain.TravelPackage
	if err := r.db.GetContext(ctx, &pkg, query, id); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) List(ctx context.Context) ([]domain.TravelPackage, error) {
	const query = `SELECT ` + packageColumns + ` FROM travel_packages ORDER BY created_at DESC`

	packages := make([]domain.TravelPackage, 0)
	if err := r.db.SelectContext(ctx, &packages, query); err != nil {
		return nil, err
	}
	return packages, nil
}

// IncrementBookings adjusts the denormalized counter. Negative deltas floor
// at zero.
func (r *PackageRepository) IncrementBookings(ctx context.Context, id uuid.UUID, delta int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE travel_packages
		SET bookings_count = GREATEST(bookings_count + $2, 0), updated_at = NOW()
		WHERE id = $1
	`, id, delta)
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

var _ ports.PackageRepository = (*PackageRepository)(nil)
