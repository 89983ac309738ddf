package identity

import (
	"context"

	"github.com/techsolutions/pos/internal/domain/identity"
)

// UserService exposes read access to operators
type UserService struct {
	userRepo identity.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID returns an operator, active or not
func (s *UserService) GetByID(ctx context.Context, id int64) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}
