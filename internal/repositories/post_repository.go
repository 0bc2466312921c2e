package repositories

import (
	"blog/internal/models"
)

// PostRepository defines the interface for post data access.
// Methods that return posts for display preload the Author association.
type PostRepository interface {
	GetAll() ([]models.Post, error)
	GetByID(id uint) (*models.Post, error)
	GetByIDWithAuthor(id uint) (*models.Post, error)
	Paginate(offset, limit int) ([]models.Post, int64, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	Delete(id uint) error
}
