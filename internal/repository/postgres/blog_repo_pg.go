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

const blogColumns = `
	b.id, b.title, b.body, b.summary, b.image, b.author_id, b.status,
	b.created_at, b.updated_at,
	u.name AS author_name,
	u.role AS author_role
`

const blogJoins = `
	FROM blogs b
	JOIN users u ON u.id = b.author_id
`

type BlogRepository struct {
	db *sqlx.DB
}

func NewBlogRepo(db *sqlx.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(ctx context.Context, blog *domain.Blog) (*domain.Blog, error) {
	const query = `
		INSERT INTO blogs (title, body, summary, image, author_id, status)
		VALUES (:title, :body, :summary, :image, :author_id, :status)
		RETURNING id
	`

	args := map[string]any{
		"title":     blog.Title,
		"body":      blog.Body,
		"summary":   nullString(blog.Summary),
		"image":     blog.Image,
		"author_id": blog.AuthorID,
		"status":    blog.Status,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	var id uuid.UUID
	if err = rows.Scan(&id); err != nil {
		return nil, err
	}
	rows.Close()

	return r.GetByID(ctx, id)
}

func (r *BlogRepository) Update(ctx context.Context, id uuid.UUID, fields domain.BlogFields, status *domain.BlogStatus) (*domain.Blog, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", idx))
		args = append(args, *fields.Title)
		idx++
	}
	if fields.Body != nil {
		setParts = append(setParts, fmt.Sprintf("body = $%d", idx))
		args = append(args, *fields.Body)
		idx++
	}
	if fields.Summary != nil {
		setParts = append(setParts, fmt.Sprintf("summary = $%d", idx))
		args = append(args, nullString(fields.Summary))
		idx++
	}
	if fields.Image != nil {
		setParts = append(setParts, fmt.Sprintf("image = $%d", idx))
		args = append(args, *fields.Image)
		idx++
	}
	if status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", idx))
		args = append(args, *status)
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE blogs
		SET %s
		WHERE id = $%d
		RETURNING id
	`, strings.Join(setParts, ", "), idx)

	args = append(args, id)

	var updatedID uuid.UUID
	if err := r.db.GetContext(ctx, &updatedID, query, args...); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, updatedID)
}

func (r *BlogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
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

func (r *BlogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Blog, error) {
	const query = `SELECT ` + blogColumns + blogJoins + ` WHERE b.id = $1`

	var blog domain.Blog
	if err := r.db.GetContext(ctx, &blog, query, id); err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *BlogRepository) List(ctx context.Context) ([]domain.Blog, error) {
	const query = `SELECT ` + blogColumns + blogJoins + ` ORDER BY b.created_at DESC`

	blogs := make([]domain.Blog, 0)
	if err := r.db.SelectContext(ctx, &blogs, query); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (r *BlogRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.BlogStatus) (*domain.Blog, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE blogs
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

var _ ports.BlogRepository = (*BlogRepository)(nil)
