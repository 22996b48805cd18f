package postgres

import (
	"context"

	"wconnect-service/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// ListVisible returns every user except selfID and users who blocked selfID.
	ListVisible(ctx context.Context, selfID uint) ([]*models.User, error)
	SearchByUsername(ctx context.Context, keyword string, selfID uint) ([]*models.User, error)
	AddContact(ctx context.Context, userID, contactID uint) error
	RemoveContact(ctx context.Context, userID, contactID uint) error
	// Block adds contactID to the block list and removes it from contacts.
	Block(ctx context.Context, userID, blockedID uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) ListVisible(ctx context.Context, selfID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", selfID).
		Where("id NOT IN (SELECT user_id FROM user_blocks WHERE blocked_id = ?)", selfID).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) SearchByUsername(ctx context.Context, keyword string, selfID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("username ILIKE ?", "%"+keyword+"%").
		Where("id <> ?", selfID).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) AddContact(ctx context.Context, userID, contactID uint) error {
	user := models.User{Model: gorm.Model{ID: userID}}
	contact := models.User{Model: gorm.Model{ID: contactID}}
	return r.db.WithContext(ctx).Model(&user).Association("Contacts").Append(&contact)
}

func (r *userRepository) RemoveContact(ctx context.Context, userID, contactID uint) error {
	user := models.User{Model: gorm.Model{ID: userID}}
	contact := models.User{Model: gorm.Model{ID: contactID}}
	return r.db.WithContext(ctx).Model(&user).Association("Contacts").Delete(&contact)
}

func (r *userRepository) Block(ctx context.Context, userID, blockedID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{Model: gorm.Model{ID: userID}}
		blocked := models.User{Model: gorm.Model{ID: blockedID}}
		if err := tx.Model(&user).Association("Blocked").Append(&blocked); err != nil {
			return err
		}
		return tx.Model(&user).Association("Contacts").Delete(&blocked)
	})
}
