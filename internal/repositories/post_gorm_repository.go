package repositories

import (
	"errors"
	"fmt"

	"blog/internal/models"

	"gorm.io/gorm"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// GetAll retrieves all posts in primary-key order with their authors.
func (r *GORMPostRepository) GetAll() ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Preload("Author").Order("id").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a single post by its ID.
func (r *GORMPostRepository) GetByID(id uint) (*models.Post, error) {
	return r.first(r.db, id)
}

// GetByIDWithAuthor retrieves a single post and its author.
func (r *GORMPostRepository) GetByIDWithAuthor(id uint) (*models.Post, error) {
	return r.first(r.db.Preload("Author"), id)
}

func (r *GORMPostRepository) first(tx *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %d: %w", id, err)
	}
	return &post, nil
}

// Paginate returns one window of posts in primary-key order together with
// the total number of posts.
func (r *GORMPostRepository) Paginate(offset, limit int) ([]models.Post, int64, error) {
	var total int64
	if err := r.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []models.Post
	err := r.db.Preload("Author").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to paginate posts: %w", err)
	}
	return posts, total, nil
}

// Create inserts a new post; the database assigns the ID.
func (r *GORMPostRepository) Create(post *models.Post) error {
	if err := r.db.Omit("Author").Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Update overwrites the title and content of an existing post.
// DatePosted and UserID are never touched.
func (r *GORMPostRepository) Update(post *models.Post) error {
	res := r.db.Model(&models.Post{ID: post.ID}).
		Select("title", "content").
		Updates(models.Post{Title: post.Title, Content: post.Content})
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %d not updated: %w", post.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a post by its ID.
func (r *GORMPostRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %d not deleted: %w", id, ErrNotFound)
	}
	return nil
}
