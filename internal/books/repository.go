package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"bookstore/internal/database"

	"github.com/google/uuid"
)

// ErrBookNotFound is returned when no record matches the given identifier
var ErrBookNotFound = errors.New("book not found")

const bookColumns = "id, title, author, price, description, cover_key, created_at, updated_at"

// Repository handles all database operations for books
type Repository struct {
	db database.Service
}

// NewRepository creates a new books repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Create inserts a new book
func (r *Repository) Create(ctx context.Context, title, author string, price float64, description string) (*Book, error) {
	query := `
		INSERT INTO books (id, title, author, price, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + bookColumns

	book := &Book{}
	err := r.db.QueryRow(ctx, query, uuid.New(), title, author, price, description).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Price,
		&book.Description,
		&book.CoverKey,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		slog.Error("Error creating book", "error", err)
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return book, nil
}

// GetByID retrieves a single book
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book := &Book{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Price,
		&book.Description,
		&book.CoverKey,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		slog.Error("Error getting book", "book_id", id, "error", err)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// GetAll retrieves every book in insertion order
func (r *Repository) GetAll(ctx context.Context) ([]Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		slog.Error("Error querying books", "error", err)
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	booksList := []Book{}
	for rows.Next() {
		var book Book
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Price,
			&book.Description,
			&book.CoverKey,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		booksList = append(booksList, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return booksList, nil
}

// Update applies a partial update. Provided fields are written as-is; the
// merged record is not re-validated.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in UpdateBookInput) (*Book, error) {
	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Author != nil {
		updates["author"] = *in.Author
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	if len(updates) == 0 {
		return r.GetByID(ctx, id)
	}

	query := `UPDATE books SET `
	args := []any{}
	argPos := 1
	for field, value := range updates {
		if argPos > 1 {
			query += ", "
		}
		query += fmt.Sprintf("%s = $%d", field, argPos)
		args = append(args, value)
		argPos++
	}
	query += fmt.Sprintf(", updated_at = NOW() WHERE id = $%d RETURNING %s", argPos, bookColumns)
	args = append(args, id)

	book := &Book{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Price,
		&book.Description,
		&book.CoverKey,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		slog.Error("Error updating book", "book_id", id, "error", err)
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return book, nil
}

// Delete removes a book. Deleting an absent identifier is a no-op rather
// than an error.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM books WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		slog.Error("Error deleting book", "book_id", id, "error", err)
		return fmt.Errorf("failed to delete book: %w", err)
	}

	return nil
}

// SetCoverKey records the object key of an uploaded cover image
func (r *Repository) SetCoverKey(ctx context.Context, id uuid.UUID, key string) error {
	query := `UPDATE books SET cover_key = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.Exec(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("failed to set cover key: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookNotFound
	}

	return nil
}
