package repository

import (
	"context"
	"time"

	"github.com/yukikurage/minitrello-api/internal/database"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user. A taken e-mail surfaces as gorm.ErrDuplicatedKey.
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by e-mail
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves one page of users ordered by display name, filtered by name or e-mail when q.Search is set
func (r *GormUserRepository) List(ctx context.Context, q utils.PageQuery) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Scopes(database.MatchAny(q.Search, "display_name", "email"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.Scopes(database.Window(q)).
		Order("display_name ASC").
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update updates the provided profile fields
func (r *GormUserRepository) Update(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if update.DisplayName != nil {
		updates["display_name"] = *update.DisplayName
	}
	if update.PhotoURL != nil {
		updates["photo_url"] = *update.PhotoURL
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}

// LinkGitHub stores the GitHub identity; an existing photo is kept
func (r *GormUserRepository) LinkGitHub(ctx context.Context, id string, link GitHubLink) error {
	updates := map[string]interface{}{
		"github_id":           link.GitHubID,
		"github_login":        link.Login,
		"github_access_token": link.AccessToken,
		"updated_at":          time.Now(),
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if link.PhotoURL != "" {
		return db.Model(&models.User{}).
			Where("id = ? AND (photo_url IS NULL OR photo_url = '')", id).
			UpdateColumn("photo_url", link.PhotoURL).Error
	}
	return nil
}
