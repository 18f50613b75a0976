package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

const userColumns = `
	id, email, name, role, image_url, password_hash, password_salt,
	created_at, updated_at
`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateEmailUser(ctx context.Context, email string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	const query = `
		INSERT INTO users (email, role, password_hash, password_salt)
		VALUES (:email, :role, :password_hash, :password_salt)
		RETURNING ` + userColumns

	args := map[string]any{
		"email":         strings.ToLower(strings.TrimSpace(email)),
		"role":          domain.RoleUser,
		"password_hash": passwordHash,
		"password_salt": passwordSalt,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var user domain.User
		if err = rows.StructScan(&user); err != nil {
			return nil, err
		}
		return &user, nil
	}
	return nil, sql.ErrNoRows
}

// UpsertGoogleUser creates the account on first federated login and refreshes
// profile fields on subsequent ones.
func (r *UserRepository) UpsertGoogleUser(ctx context.Context, email string, name *string, imageURL *string) (*domain.User, error) {
	const query = `
		INSERT INTO users (email, name, role, image_url)
		VALUES (:email, :name, :role, :image_url)
		ON CONFLICT (email) DO UPDATE
		SET name = COALESCE(EXCLUDED.name, users.name),
		    image_url = COALESCE(EXCLUDED.image_url, users.image_url),
		    updated_at = NOW()
		RETURNING ` + userColumns

	args := map[string]any{
		"email":     strings.ToLower(strings.TrimSpace(email)),
		"name":      nullString(name),
		"role":      domain.RoleUser,
		"image_url": nullString(imageURL),
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var user domain.User
		if err = rows.StructScan(&user); err != nil {
			return nil, err
		}
		return &user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(email))); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at ASC`

	users := make([]domain.User, 0)
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, err
	}
	return users, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
