package services

import (
	"context"
	"errors"

	"wconnect-service/internal/models"
	"wconnect-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// UserService covers the profile/contact CRUD surface. It only ever hands
// out public projections; credentials stay inside the repository row.
type UserService struct {
	users postgres.UserRepository
}

func NewUserService(users postgres.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("user %d does not exist", userID)
		}
		return nil, err
	}
	resp := user.Public()
	return &resp, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("user %d does not exist", userID)
		}
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.LastSeenVisibility != nil {
		user.LastSeenVisibility = *req.LastSeenVisibility
	}
	if req.ReadReceipts != nil {
		user.ReadReceipts = req.ReadReceipts
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := user.Public()
	return &resp, nil
}

// ListVisible returns every user except the caller and users who blocked
// the caller.
func (s *UserService) ListVisible(ctx context.Context, selfID uint) ([]models.UserResponse, error) {
	users, err := s.users.ListVisible(ctx, selfID)
	if err != nil {
		return nil, err
	}
	return publicProjections(users), nil
}

func (s *UserService) Search(ctx context.Context, keyword string, selfID uint) ([]models.UserResponse, error) {
	if keyword == "" {
		return nil, validationErr("search keyword must not be empty")
	}
	users, err := s.users.SearchByUsername(ctx, keyword, selfID)
	if err != nil {
		return nil, err
	}
	return publicProjections(users), nil
}

func (s *UserService) AddContact(ctx context.Context, userID, contactID uint) error {
	if userID == contactID {
		return validationErr("cannot add yourself as a contact")
	}
	if _, err := s.users.FindByID(ctx, contactID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("user %d does not exist", contactID)
		}
		return err
	}
	return s.users.AddContact(ctx, userID, contactID)
}

func (s *UserService) RemoveContact(ctx context.Context, userID, contactID uint) error {
	return s.users.RemoveContact(ctx, userID, contactID)
}

func (s *UserService) Block(ctx context.Context, userID, blockedID uint) error {
	if userID == blockedID {
		return validationErr("cannot block yourself")
	}
	if _, err := s.users.FindByID(ctx, blockedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("user %d does not exist", blockedID)
		}
		return err
	}
	return s.users.Block(ctx, userID, blockedID)
}

func publicProjections(users []*models.User) []models.UserResponse {
	responses := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.Public())
	}
	return responses
}
