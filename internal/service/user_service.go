package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stemsi/unierp-backend/internal/response"
)

// UserService manages user accounts. Credentials live with the identity provider.
type UserService struct {
	repo *repository.UserRepository
	log  zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log.With().Str("component", "user_service").Logger(),
	}
}

// List returns a page of users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role *model.Role, page, perPage int) ([]model.User, *response.Pagination, error) {
	page, perPage, offset := normalizePage(page, perPage)
	users, total, err := s.repo.ListPaginated(ctx, role, perPage, offset)
	if err != nil {
		return nil, nil, err
	}
	return users, response.NewPagination(page, perPage, total), nil
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a user account.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if req.StudentNumber != nil && req.Role != model.RoleStudent {
		return nil, ErrStudentNumberRole
	}
	u := &model.User{
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Name:          req.Name,
		Role:          req.Role,
		StudentNumber: req.StudentNumber,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("User created")
	return u, nil
}

// Update applies a partial update.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, upd model.UserUpdate) (*model.User, error) {
	if upd.StudentNumber != nil {
		u, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u.Role != model.RoleStudent {
			return nil, ErrStudentNumberRole
		}
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		upd.Email = &email
	}
	return s.repo.Update(ctx, id, upd)
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
