package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/policy"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
	"github.com/foodieland/foodieland-api/internal/util"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("the name has already been taken")
	ErrCategoryInUse    = errors.New("cannot delete category with recipes")
)

type CategoryInput struct {
	Name        string
	Description *string
}

type CategoryService struct {
	categories ports.CategoryRepository
	recipes    *RecipeService
}

func NewCategoryService(categories ports.CategoryRepository, recipes *RecipeService) *CategoryService {
	return &CategoryService{categories: categories, recipes: recipes}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// Recipes returns the category named by slug and one page of its recipes.
func (s *CategoryService) Recipes(ctx context.Context, slug string, page int) (*domain.Category, *Page[domain.Recipe], error) {
	category, err := s.categories.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}
	recipes, err := s.recipes.List(ctx, RecipeQuery{Category: category.Slug, Page: page})
	if err != nil {
		return nil, nil, err
	}
	return category, recipes, nil
}

func (s *CategoryService) Create(ctx context.Context, actor *domain.User, input CategoryInput) (*domain.Category, error) {
	if !policy.Can(actor, policy.ActionCreate, policy.On(policy.ResourceCategory)) {
		return nil, ErrForbidden
	}
	name, slug, err := validateCategory(input)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.Create(ctx, name, slug, normalizeString(input.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, actor *domain.User, id uuid.UUID, input CategoryInput) (*domain.Category, error) {
	if !policy.Can(actor, policy.ActionUpdate, policy.On(policy.ResourceCategory)) {
		return nil, ErrForbidden
	}
	name, slug, err := validateCategory(input)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.Update(ctx, id, name, slug, normalizeString(input.Description))
	if err != nil {
		switch {
		case isNotFound(err):
			return nil, ErrCategoryNotFound
		case isUniqueViolation(err):
			return nil, ErrCategoryExists
		default:
			return nil, err
		}
	}
	return category, nil
}

// Delete refuses while any recipe is still filed under the category.
func (s *CategoryService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if !policy.Can(actor, policy.ActionDelete, policy.On(policy.ResourceCategory)) {
		return ErrForbidden
	}
	count, err := s.categories.CountRecipes(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		switch {
		case isNotFound(err):
			return ErrCategoryNotFound
		case isForeignKeyViolation(err):
			// A recipe was filed between the count and the delete.
			return ErrCategoryInUse
		default:
			return err
		}
	}
	return nil
}

func validateCategory(input CategoryInput) (string, string, error) {
	name, err := requireText("name", input.Name, maxNameLength)
	if err != nil {
		return "", "", err
	}
	slug := util.Slugify(name)
	if slug == "" {
		return "", "", fmt.Errorf("%w: name must contain letters or digits", ErrValidation)
	}
	return name, slug, nil
}
