package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/policy"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

var ErrCommentNotFound = errors.New("comment not found")

const (
	maxCommentLength       = 1000
	defaultCommentsPerPage = 20
)

type CommentService struct {
	comments ports.CommentRepository
	recipes  ports.RecipeRepository
	posts    ports.BlogPostRepository
}

func NewCommentService(comments ports.CommentRepository, recipes ports.RecipeRepository, posts ports.BlogPostRepository) *CommentService {
	return &CommentService{comments: comments, recipes: recipes, posts: posts}
}

func (s *CommentService) List(ctx context.Context, target domain.CommentTarget, slug string, page int) (*Page[domain.Comment], error) {
	targetID, err := s.resolveTarget(ctx, target, slug)
	if err != nil {
		return nil, err
	}
	page, perPage, limit, offset := pageWindow(page, defaultCommentsPerPage, defaultCommentsPerPage)
	total, err := s.comments.CountByTarget(ctx, target, targetID)
	if err != nil {
		return nil, err
	}
	items, err := s.comments.ListByTarget(ctx, target, targetID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &Page[domain.Comment]{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *CommentService) Create(ctx context.Context, actor *domain.User, target domain.CommentTarget, slug, body string) (*domain.Comment, error) {
	if !policy.Can(actor, policy.ActionCreate, policy.On(policy.ResourceComment)) {
		return nil, ErrForbidden
	}
	body, err := requireText("body", body, maxCommentLength)
	if err != nil {
		return nil, err
	}
	targetID, err := s.resolveTarget(ctx, target, slug)
	if err != nil {
		return nil, err
	}
	return s.comments.Create(ctx, actor.ID, target, targetID, body)
}

func (s *CommentService) Update(ctx context.Context, actor *domain.User, id uuid.UUID, body string) (*domain.Comment, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.ActionUpdate, policy.Owned(policy.ResourceComment, current.UserID)) {
		return nil, ErrForbidden
	}
	body, err = requireText("body", body, maxCommentLength)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.UpdateBody(ctx, id, body)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Can(actor, policy.ActionDelete, policy.Owned(policy.ResourceComment, current.UserID)) {
		return ErrForbidden
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

func (s *CommentService) find(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) resolveTarget(ctx context.Context, target domain.CommentTarget, slug string) (uuid.UUID, error) {
	switch target {
	case domain.CommentTargetRecipe:
		recipe, err := s.recipes.FindBySlug(ctx, slug)
		if err != nil {
			if isNotFound(err) {
				return uuid.Nil, ErrRecipeNotFound
			}
			return uuid.Nil, err
		}
		return recipe.ID, nil
	case domain.CommentTargetBlog:
		post, err := s.posts.FindBySlug(ctx, slug)
		if err != nil {
			if isNotFound(err) {
				return uuid.Nil, ErrBlogPostNotFound
			}
			return uuid.Nil, err
		}
		return post.ID, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: unknown comment target %q", ErrValidation, target)
	}
}
