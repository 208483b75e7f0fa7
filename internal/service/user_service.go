package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/media"
	"github.com/foodieland/foodieland-api/internal/policy"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

var ErrAuthorNotFound = errors.New("author not found")

const maxBioLength = 1000

type UserServiceConfig struct {
	Bucket         string
	ImageProcessor media.Processor
}

type ProfileInput struct {
	Name  *string
	Email *string
	Bio   *string
	Image *media.Upload
}

// Profile is the signed-in account as shown to itself.
type Profile struct {
	*domain.User
	FavoriteRecipeIDs []uuid.UUID `json:"favorite_recipe_ids"`
}

// AuthorProfile is the public view of an account.
type AuthorProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Bio       *string   `json:"bio,omitempty"`
	ImageURL  *string   `json:"profile_image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserService struct {
	users     ports.UserRepository
	favorites ports.FavoriteRepository
	images    *imageUploader
}

func NewUserService(users ports.UserRepository, favorites ports.FavoriteRepository, storage ports.ObjectStorage, cfg UserServiceConfig) *UserService {
	return &UserService{
		users:     users,
		favorites: favorites,
		images:    newImageUploader(storage, cfg.ImageProcessor, strings.TrimSpace(cfg.Bucket)),
	}
}

func (s *UserService) Me(ctx context.Context, user *domain.User) (*Profile, error) {
	ids, err := s.favorites.RecipeIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, FavoriteRecipeIDs: nonNil(ids)}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, input ProfileInput) (*domain.User, error) {
	if actor == nil || !policy.Can(actor, policy.ActionUpdate, policy.Owned(policy.ResourceProfile, actor.ID)) {
		return nil, ErrForbidden
	}
	var update domain.ProfileUpdate
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		update.Email = &email
	}
	if input.Bio != nil {
		bio := strings.TrimSpace(*input.Bio)
		if len([]rune(bio)) > maxBioLength {
			return nil, fmt.Errorf("%w: bio may not be greater than %d characters", ErrValidation, maxBioLength)
		}
		update.Bio = &bio
	}

	var image *storedImage
	if input.Image != nil {
		var err error
		if image, err = s.images.upload(ctx, "profiles/"+actor.ID.String(), *input.Image); err != nil {
			return nil, err
		}
		update.ImageURL = &image.URL
	}

	user, err := s.users.UpdateProfile(ctx, actor.ID, update)
	if err != nil {
		s.images.discard(ctx, image)
		switch {
		case isUniqueViolation(err):
			return nil, ErrEmailTaken
		case isNotFound(err):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}
	user.Roles = actor.Roles
	return user, nil
}

func (s *UserService) Author(ctx context.Context, id uuid.UUID) (*AuthorProfile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return &AuthorProfile{
		ID:        user.ID,
		Name:      user.Name,
		Bio:       user.Bio,
		ImageURL:  user.ImageURL,
		CreatedAt: user.CreatedAt,
	}, nil
}
