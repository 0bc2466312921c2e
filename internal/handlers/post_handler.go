package handlers

import (
	"log/slog"
	"time"

	"blog/internal/models"
	"blog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for blog posts.
type PostHandler struct {
	service  *services.PostService
	validate *validator.Validate
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the post routes with the Fiber app.
func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/create", h.HandleCreatePost)
	router.Get("/read/:post_id", h.HandleReadPost)
	router.Put("/update/:post_id", h.HandleUpdatePost)
	router.Delete("/delete/:post_id", h.HandleDeletePost)
	router.Get("/home", h.HandleListPosts)
	router.Get("/single/:post_id", h.HandleGetSinglePost)
	router.Get("/pagination", h.HandlePaginatePosts)
}

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	UserID  uint   `json:"user_id" validate:"required"`
}

// UpdatePostRequest represents the request body for updating a post.
type UpdatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// PostDetail is the body of GET /read/:post_id.
type PostDetail struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	DatePosted time.Time `json:"date_posted"`
}

// PostSummary is one entry of GET /home and GET /pagination.
type PostSummary struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	DatePosted time.Time `json:"date_posted"`
	Username   string    `json:"Username"`
}

// SinglePost is the body of GET /single/:post_id.
type SinglePost struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	DatePosted time.Time `json:"date_posted"`
	Username   string    `json:"username"`
}

// Pagination describes the window returned by GET /pagination.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	TotalPosts int64 `json:"total_posts"`
}

// PaginatedPosts is the body of GET /pagination.
type PaginatedPosts struct {
	BlogPosts  []PostSummary `json:"blog_posts"`
	Pagination Pagination    `json:"pagination"`
}

func toSummaries(posts []models.Post) []PostSummary {
	summaries := make([]PostSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, PostSummary{
			ID:         posts[i].ID,
			Title:      posts[i].Title,
			DatePosted: posts[i].DatePosted,
			Username:   posts[i].AuthorName(),
		})
	}
	return summaries
}

// postID parses the :post_id path segment. Anything that is not a positive
// integer cannot name a post and is reported as not found.
func postID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("post_id")
	if err != nil || id < 1 {
		return 0, services.ErrPostNotFound
	}
	return uint(id), nil
}

// HandleCreatePost creates a new post.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := validateStruct(h.validate, req); err != nil {
		return writeError(c, err)
	}

	post := &models.Post{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	}
	if err := h.service.CreatePost(post); err != nil {
		slog.Warn("Error creating post", "user_id", req.UserID, "error", err)
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Blog post created successfully",
		"id":      post.ID,
	})
}

// HandleReadPost retrieves a single post by its ID.
func (h *PostHandler) HandleReadPost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return writeError(c, err)
	}
	post, err := h.service.GetPostByID(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(PostDetail{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		DatePosted: post.DatePosted,
	})
}

// HandleUpdatePost overwrites the title and content of a post.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req UpdatePostRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := validateStruct(h.validate, req); err != nil {
		return writeError(c, err)
	}

	if _, err := h.service.UpdatePost(id, req.Title, req.Content); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Blog post updated successfully",
	})
}

// HandleDeletePost deletes a post by its ID.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.service.DeletePost(id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Blog post deleted successfully",
	})
}

// HandleListPosts lists every post with its author's username.
func (h *PostHandler) HandleListPosts(c *fiber.Ctx) error {
	posts, err := h.service.GetAllPosts()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSummaries(posts))
}

// HandleGetSinglePost retrieves a post together with its author's username.
func (h *PostHandler) HandleGetSinglePost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return writeError(c, err)
	}
	post, err := h.service.GetPostWithAuthor(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(SinglePost{
		ID:         post.ID,
		Title:      post.Title,
		DatePosted: post.DatePosted,
		Username:   post.AuthorName(),
	})
}

// HandlePaginatePosts returns one page of posts. Unparseable page or
// per_page values fall back to the defaults.
func (h *PostHandler) HandlePaginatePosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", services.DefaultPage)
	perPage := c.QueryInt("per_page", services.DefaultPerPage)

	result, err := h.service.PaginatePosts(page, perPage)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(PaginatedPosts{
		BlogPosts: toSummaries(result.Posts),
		Pagination: Pagination{
			Page:       result.Page,
			PerPage:    result.PerPage,
			TotalPages: result.TotalPages,
			TotalPosts: result.TotalPosts,
		},
	})
}
