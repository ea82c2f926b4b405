package call

import (
	"context"

	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, c *Call) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) FindByRoomID(ctx context.Context, roomID string) (*Call, error) {
	var c Call
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) DeleteByRoomID(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&Call{}).Error
}

func (r *Repo) FindUser(ctx context.Context, id uint64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
