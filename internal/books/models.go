package books

import (
	"time"

	"github.com/google/uuid"
)

// Book represents one catalog record. CoverKey is the optional object key of
// an uploaded cover image; nil when no cover has been attached.
type Book struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Author      string    `json:"author" db:"author"`
	Price       float64   `json:"price" db:"price"`
	Description string    `json:"description" db:"description"`
	CoverKey    *string   `json:"cover_key,omitempty" db:"cover_key"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateBookInput carries the fields of a partial update. Nil fields are
// left untouched; provided fields are written without further validation.
type UpdateBookInput struct {
	Title       *string
	Author      *string
	Price       *float64
	Description *string
}

// CoverUpload is the response payload for a presigned cover upload URL
type CoverUpload struct {
	UploadURL string `json:"upload_url"`
	CoverKey  string `json:"cover_key"`
	ExpiresAt int64  `json:"expires_at"`
}

// CoverUploadRequest is the request payload for requesting a cover upload URL
type CoverUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}
