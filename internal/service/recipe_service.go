package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/media"
	"github.com/foodieland/foodieland-api/internal/policy"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

var ErrRecipeNotFound = errors.New("recipe not found")

const (
	defaultRecipesPerPage = 12
	maxTitleLength        = 255
	recipeCommentPreview  = 50
)

type RecipeServiceConfig struct {
	Bucket         string
	ImageProcessor media.Processor
}

// RecipeInput holds the caller's fields. On update nil fields are left as
// they are.
type RecipeInput struct {
	Title          *string
	Description    *string
	PrepTime       *int
	CookTime       *int
	Difficulty     *string
	Ingredients    []string
	Instructions   []string
	NutritionFacts domain.JSONDocument
	CategoryIDs    []uuid.UUID
	Tags           []string
	Image          *media.Upload
}

type RecipeQuery struct {
	Search   string
	Category string
	Page     int
	PerPage  int
}

type RecipeService struct {
	recipes    ports.RecipeRepository
	categories ports.CategoryRepository
	tags       ports.TagRepository
	comments   ports.CommentRepository
	favorites  ports.FavoriteRepository
	images     *imageUploader
}

func NewRecipeService(
	recipes ports.RecipeRepository,
	categories ports.CategoryRepository,
	tags ports.TagRepository,
	comments ports.CommentRepository,
	favorites ports.FavoriteRepository,
	storage ports.ObjectStorage,
	cfg RecipeServiceConfig,
) *RecipeService {
	return &RecipeService{
		recipes:    recipes,
		categories: categories,
		tags:       tags,
		comments:   comments,
		favorites:  favorites,
		images:     newImageUploader(storage, cfg.ImageProcessor, strings.TrimSpace(cfg.Bucket)),
	}
}

func (s *RecipeService) List(ctx context.Context, query RecipeQuery) (*Page[domain.Recipe], error) {
	page, perPage, limit, offset := pageWindow(query.Page, query.PerPage, defaultRecipesPerPage)
	filter := domain.RecipeFilter{
		Search:       strings.TrimSpace(query.Search),
		CategorySlug: strings.TrimSpace(query.Category),
		Limit:        limit,
		Offset:       offset,
	}
	return s.list(ctx, filter, page, perPage)
}

func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uuid.UUID, page int) (*Page[domain.Recipe], error) {
	page, perPage, limit, offset := pageWindow(page, defaultRecipesPerPage, defaultRecipesPerPage)
	return s.list(ctx, domain.RecipeFilter{AuthorID: &authorID, Limit: limit, Offset: offset}, page, perPage)
}

func (s *RecipeService) list(ctx context.Context, filter domain.RecipeFilter, page, perPage int) (*Page[domain.Recipe], error) {
	total, err := s.recipes.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.recipes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(ctx, items); err != nil {
		return nil, err
	}
	return &Page[domain.Recipe]{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Get loads a recipe with its relations. viewer may be nil; when set the
// result reports whether the viewer favorited it.
func (s *RecipeService) Get(ctx context.Context, slug string, viewer *domain.User) (*domain.Recipe, error) {
	recipe, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	items := []domain.Recipe{*recipe}
	if err := s.attachRelations(ctx, items); err != nil {
		return nil, err
	}
	*recipe = items[0]

	comments, err := s.comments.ListByTarget(ctx, domain.CommentTargetRecipe, recipe.ID, recipeCommentPreview, 0)
	if err != nil {
		return nil, err
	}
	recipe.Comments = comments

	if viewer != nil {
		favorited, err := s.favorites.Exists(ctx, viewer.ID, recipe.ID)
		if err != nil {
			return nil, err
		}
		recipe.IsFavorited = &favorited
	}
	return recipe, nil
}

func (s *RecipeService) Create(ctx context.Context, actor *domain.User, input RecipeInput) (*domain.Recipe, error) {
	if !policy.Can(actor, policy.ActionCreate, policy.On(policy.ResourceRecipe)) {
		return nil, ErrForbidden
	}
	draft, err := s.validateCreate(input)
	if err != nil {
		return nil, err
	}
	categoryIDs, err := resolveCategories(ctx, s.categories, input.CategoryIDs, true)
	if err != nil {
		return nil, err
	}
	tagIDs, err := resolveTags(ctx, s.tags, input.Tags)
	if err != nil {
		return nil, err
	}

	var image *storedImage
	if input.Image != nil {
		if image, err = s.images.upload(ctx, "recipes", *input.Image); err != nil {
			return nil, err
		}
		draft.ImageURL = &image.URL
	}

	exists := func(ctx context.Context, candidate string) (bool, error) {
		return s.recipes.SlugExists(ctx, candidate, nil)
	}
	recipe, err := saveWithUniqueSlug(ctx, *draft.Title, exists, func(slug string) (*domain.Recipe, error) {
		draft.Slug = &slug
		return s.recipes.Create(ctx, actor.ID, draft, categoryIDs, tagIDs)
	})
	if err != nil {
		s.images.discard(ctx, image)
		return nil, err
	}
	return s.withRelations(ctx, recipe)
}

func (s *RecipeService) Update(ctx context.Context, actor *domain.User, slug string, input RecipeInput) (*domain.Recipe, error) {
	current, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.ActionUpdate, policy.Owned(policy.ResourceRecipe, current.UserID)) {
		return nil, ErrForbidden
	}
	draft, err := s.validateUpdate(input)
	if err != nil {
		return nil, err
	}
	categoryIDs, err := resolveCategories(ctx, s.categories, input.CategoryIDs, false)
	if err != nil {
		return nil, err
	}
	tagIDs, err := resolveTags(ctx, s.tags, input.Tags)
	if err != nil {
		return nil, err
	}

	var image *storedImage
	if input.Image != nil {
		if image, err = s.images.upload(ctx, "recipes", *input.Image); err != nil {
			return nil, err
		}
		draft.ImageURL = &image.URL
	}

	save := func(slug string) (*domain.Recipe, error) {
		if slug != "" {
			draft.Slug = &slug
		}
		return s.recipes.Update(ctx, current.ID, draft, categoryIDs, tagIDs)
	}
	var recipe *domain.Recipe
	if draft.Title != nil && *draft.Title != current.Title {
		exists := func(ctx context.Context, candidate string) (bool, error) {
			return s.recipes.SlugExists(ctx, candidate, &current.ID)
		}
		recipe, err = saveWithUniqueSlug(ctx, *draft.Title, exists, save)
	} else {
		recipe, err = save("")
	}
	if err != nil {
		s.images.discard(ctx, image)
		if isNotFound(err) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return s.withRelations(ctx, recipe)
}

func (s *RecipeService) Delete(ctx context.Context, actor *domain.User, slug string) error {
	current, err := s.find(ctx, slug)
	if err != nil {
		return err
	}
	if !policy.Can(actor, policy.ActionDelete, policy.Owned(policy.ResourceRecipe, current.UserID)) {
		return ErrForbidden
	}
	if err := s.recipes.Delete(ctx, current.ID); err != nil {
		if isNotFound(err) {
			return ErrRecipeNotFound
		}
		return err
	}
	return nil
}

func (s *RecipeService) find(ctx context.Context, slug string) (*domain.Recipe, error) {
	recipe, err := s.recipes.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) withRelations(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	items := []domain.Recipe{*recipe}
	if err := s.attachRelations(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *RecipeService) attachRelations(ctx context.Context, recipes []domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}
	catMap, err := s.recipes.CategoriesByRecipe(ctx, ids)
	if err != nil {
		return err
	}
	tagMap, err := s.recipes.TagsByRecipe(ctx, ids)
	if err != nil {
		return err
	}
	for i := range recipes {
		recipes[i].Categories = nonNil(catMap[recipes[i].ID])
		recipes[i].Tags = nonNil(tagMap[recipes[i].ID])
	}
	return nil
}

func (s *RecipeService) validateCreate(input RecipeInput) (domain.RecipeDraft, error) {
	switch {
	case input.Title == nil:
		return domain.RecipeDraft{}, fmt.Errorf("%w: title is required", ErrValidation)
	case input.Description == nil:
		return domain.RecipeDraft{}, fmt.Errorf("%w: description is required", ErrValidation)
	case input.PrepTime == nil:
		return domain.RecipeDraft{}, fmt.Errorf("%w: prep_time is required", ErrValidation)
	case input.CookTime == nil:
		return domain.RecipeDraft{}, fmt.Errorf("%w: cook_time is required", ErrValidation)
	case input.Difficulty == nil:
		return domain.RecipeDraft{}, fmt.Errorf("%w: difficulty is required", ErrValidation)
	case input.Ingredients == nil:
		return domain.RecipeDraft{}, fmt.Errorf("%w: ingredients is required", ErrValidation)
	case input.Instructions == nil:
		return domain.RecipeDraft{}, fmt.Errorf("%w: instructions is required", ErrValidation)
	}
	return s.validateUpdate(input)
}

func (s *RecipeService) validateUpdate(input RecipeInput) (domain.RecipeDraft, error) {
	var draft domain.RecipeDraft
	if input.Title != nil {
		title, err := requireText("title", *input.Title, maxTitleLength)
		if err != nil {
			return draft, err
		}
		draft.Title = &title
	}
	if input.Description != nil {
		description, err := requireText("description", *input.Description, 0)
		if err != nil {
			return draft, err
		}
		draft.Description = &description
	}
	if input.PrepTime != nil {
		if *input.PrepTime < 1 {
			return draft, fmt.Errorf("%w: prep_time must be at least 1", ErrValidation)
		}
		draft.PrepTime = input.PrepTime
	}
	if input.CookTime != nil {
		if *input.CookTime < 1 {
			return draft, fmt.Errorf("%w: cook_time must be at least 1", ErrValidation)
		}
		draft.CookTime = input.CookTime
	}
	if input.Difficulty != nil {
		difficulty, ok := domain.ParseDifficulty(*input.Difficulty)
		if !ok {
			return draft, fmt.Errorf("%w: difficulty must be one of easy, medium, hard", ErrValidation)
		}
		draft.Difficulty = &difficulty
	}
	if input.Ingredients != nil {
		ingredients, err := cleanList("ingredients", input.Ingredients)
		if err != nil {
			return draft, err
		}
		draft.Ingredients = ingredients
	}
	if input.Instructions != nil {
		instructions, err := cleanList("instructions", input.Instructions)
		if err != nil {
			return draft, err
		}
		draft.Instructions = instructions
	}
	if input.NutritionFacts != nil {
		if !isJSONObject(input.NutritionFacts) {
			return draft, fmt.Errorf("%w: nutrition_facts must be an object", ErrValidation)
		}
		draft.NutritionFacts = input.NutritionFacts
	}
	return draft, nil
}

func isJSONObject(doc domain.JSONDocument) bool {
	trimmed := strings.TrimSpace(string(doc))
	return strings.HasPrefix(trimmed, "{") && doc.IsContainer()
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
