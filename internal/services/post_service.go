package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"blog/internal/models"
	"blog/internal/repositories"
)

const (
	// DefaultPage is used when the caller does not ask for a page.
	DefaultPage = 1
	// DefaultPerPage is used when the caller does not ask for a page size.
	DefaultPerPage = 10
	// DefaultMaxPerPage bounds the page size unless configured otherwise.
	DefaultMaxPerPage = 100
)

// Post lifecycle events.
const (
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
)

// EventPublisher publishes post lifecycle events to a message broker.
type EventPublisher interface {
	PublishPostEvent(event string, payload map[string]interface{}) error
}

// PostPage is one page of posts plus the metadata needed to walk the rest.
type PostPage struct {
	Posts      []models.Post
	Page       int
	PerPage    int
	TotalPages int
	TotalPosts int64
}

// PostService handles business logic related to blog posts.
type PostService struct {
	postRepo   repositories.PostRepository
	userRepo   repositories.UserRepository
	publisher  EventPublisher // optional
	maxPerPage int
}

// NewPostService creates a new PostService. publisher may be nil, in which
// case no events are published.
func NewPostService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, publisher EventPublisher, maxPerPage int) *PostService {
	if maxPerPage <= 0 {
		maxPerPage = DefaultMaxPerPage
	}
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		publisher:  publisher,
		maxPerPage: maxPerPage,
	}
}

// CreatePost stores a new post after checking that its author exists.
func (s *PostService) CreatePost(post *models.Post) error {
	if _, err := s.userRepo.GetByID(post.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewValidationError("user_id", "user_id does not reference an existing user")
		}
		return fmt.Errorf("failed to check author %d: %w", post.UserID, err)
	}

	if err := s.postRepo.Create(post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	s.publish(EventPostCreated, post)
	return nil
}

// GetPostByID retrieves a single post without its author.
func (s *PostService) GetPostByID(id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return post, nil
}

// GetPostWithAuthor retrieves a single post with its author resolved.
func (s *PostService) GetPostWithAuthor(id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByIDWithAuthor(id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if post.Author == nil {
		return nil, fmt.Errorf("post %d references missing user %d", post.ID, post.UserID)
	}
	return post, nil
}

// UpdatePost overwrites the title and content of an existing post.
func (s *PostService) UpdatePost(id uint, title, content string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, translateNotFound(err)
	}

	post.Title = title
	post.Content = content
	if err := s.postRepo.Update(post); err != nil {
		return nil, translateNotFound(err)
	}
	s.publish(EventPostUpdated, post)
	return post, nil
}

// DeletePost removes a post by its ID.
func (s *PostService) DeletePost(id uint) error {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return translateNotFound(err)
	}
	if err := s.postRepo.Delete(id); err != nil {
		return translateNotFound(err)
	}
	s.publish(EventPostDeleted, post)
	return nil
}

// GetAllPosts retrieves every post with its author, in insertion order.
func (s *PostService) GetAllPosts() ([]models.Post, error) {
	return s.postRepo.GetAll()
}

// PaginatePosts returns page number page of size perPage. perPage is capped
// at the configured maximum; a page past the end is empty.
func (s *PostService) PaginatePosts(page, perPage int) (*PostPage, error) {
	if page < 1 {
		return nil, NewValidationError("page", "page must be a positive integer")
	}
	if perPage < 1 {
		return nil, NewValidationError("per_page", "per_page must be a positive integer")
	}
	if perPage > s.maxPerPage {
		perPage = s.maxPerPage
	}
	// The offset (page-1)*perPage must fit in an int.
	if page-1 > math.MaxInt/perPage {
		return nil, NewValidationError("page", "page is out of range")
	}

	posts, total, err := s.postRepo.Paginate((page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:      posts,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
		TotalPosts: total,
	}, nil
}

func (s *PostService) publish(event string, post *models.Post) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"post_id": post.ID,
		"user_id": post.UserID,
		"title":   post.Title,
		"at":      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishPostEvent(event, payload); err != nil {
		slog.Warn("Failed to publish post event", "event", event, "post_id", post.ID, "error", err)
	}
}

func translateNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}
