package books

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the book catalog
type Handler struct {
	service Service
}

// NewHandler creates a new books handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /books
func (h *Handler) List(c *gin.Context) {
	booksList, err := h.service.List(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list books", "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.HTML(http.StatusOK, "books_index.html", gin.H{
		"books":    booksList,
		"username": c.GetString("username"),
	})
}

// ShowAddForm handles GET /books/add
func (h *Handler) ShowAddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "books_new.html", gin.H{
		"username": c.GetString("username"),
	})
}

// Create handles POST /books. All four fields are required; a missing or
// unparseable field yields a 400 and no record.
func (h *Handler) Create(c *gin.Context) {
	title := c.PostForm("title")
	author := c.PostForm("author")
	description := c.PostForm("description")
	price, priceErr := strconv.ParseFloat(c.PostForm("price"), 64)

	if title == "" || author == "" || description == "" || priceErr != nil {
		c.String(http.StatusBadRequest, "Bad Request: All fields are required")
		return
	}

	book, err := h.service.Create(c.Request.Context(), title, author, price, description)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			c.String(http.StatusBadRequest, "Bad Request: All fields are required")
			return
		}
		slog.Error("Failed to create book", "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.Redirect(http.StatusFound, "/books/"+book.ID.String())
}

// Show handles GET /books/:id
func (h *Handler) Show(c *gin.Context) {
	id, ok := h.bookID(c)
	if !ok {
		return
	}

	book, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.renderLookupError(c, err)
		return
	}

	coverURL, err := h.service.CoverDownloadURL(c.Request.Context(), book)
	if err != nil {
		// A missing cover never blocks the page
		slog.Warn("Failed to presign cover download", "book_id", id, "error", err)
	}

	c.HTML(http.StatusOK, "books_show.html", gin.H{
		"book":     book,
		"coverURL": coverURL,
		"username": c.GetString("username"),
	})
}

// ShowEditForm handles GET /books/:id/edit
func (h *Handler) ShowEditForm(c *gin.Context) {
	id, ok := h.bookID(c)
	if !ok {
		return
	}

	book, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.renderLookupError(c, err)
		return
	}

	c.HTML(http.StatusOK, "books_edit.html", gin.H{
		"book":     book,
		"username": c.GetString("username"),
	})
}

// Update handles PUT /books/:id. Only submitted fields are written; the
// merged record is not re-validated.
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.bookID(c)
	if !ok {
		return
	}

	var in UpdateBookInput
	if v, exists := c.GetPostForm("title"); exists {
		in.Title = &v
	}
	if v, exists := c.GetPostForm("author"); exists {
		in.Author = &v
	}
	if v, exists := c.GetPostForm("description"); exists {
		in.Description = &v
	}
	if v, exists := c.GetPostForm("price"); exists {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			in.Price = &price
		}
	}

	if _, err := h.service.Update(c.Request.Context(), id, in); err != nil {
		h.renderLookupError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/books/"+id.String())
}

// Delete handles DELETE /books/:id. No existence check; the redirect to
// /books happens whether or not a record was removed.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.bookID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		slog.Error("Failed to delete book", "book_id", id, "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.Redirect(http.StatusFound, "/books")
}

// CoverUploadURL handles POST /books/:id/cover-url
func (h *Handler) CoverUploadURL(c *gin.Context) {
	id, ok := h.bookID(c)
	if !ok {
		return
	}

	var req CoverUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content_type is required"})
		return
	}

	upload, err := h.service.CoverUploadURL(c.Request.Context(), id, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cover storage is not available"})
		case errors.Is(err, ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		default:
			slog.Error("Failed to presign cover upload", "book_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate upload URL"})
		}
		return
	}

	c.JSON(http.StatusOK, upload)
}

// bookID parses the :id path parameter. A malformed identifier is a 400,
// never a 404 or 500.
func (h *Handler) bookID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid Book ID")
		c.Abort()
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) renderLookupError(c *gin.Context, err error) {
	if errors.Is(err, ErrBookNotFound) {
		c.String(http.StatusNotFound, "Book not found")
		return
	}
	slog.Error("Book lookup failed", "error", err)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}
