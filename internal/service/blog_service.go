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

var ErrBlogPostNotFound = errors.New("blog post not found")

const (
	defaultPostsPerPage  = 10
	defaultAuthorPerPage = 12
	maxExcerptLength     = 500
)

type BlogServiceConfig struct {
	Bucket         string
	ImageProcessor media.Processor
}

type BlogPostInput struct {
	Title       *string
	Excerpt     *string
	Content     *string
	CategoryIDs []uuid.UUID
	Tags        []string
	Image       *media.Upload
}

type BlogService struct {
	posts      ports.BlogPostRepository
	categories ports.CategoryRepository
	tags       ports.TagRepository
	comments   ports.CommentRepository
	images     *imageUploader
}

func NewBlogService(
	posts ports.BlogPostRepository,
	categories ports.CategoryRepository,
	tags ports.TagRepository,
	comments ports.CommentRepository,
	storage ports.ObjectStorage,
	cfg BlogServiceConfig,
) *BlogService {
	return &BlogService{
		posts:      posts,
		categories: categories,
		tags:       tags,
		comments:   comments,
		images:     newImageUploader(storage, cfg.ImageProcessor, strings.TrimSpace(cfg.Bucket)),
	}
}

func (s *BlogService) List(ctx context.Context, page int) (*Page[domain.BlogPost], error) {
	page, perPage, limit, offset := pageWindow(page, defaultPostsPerPage, defaultPostsPerPage)
	return s.list(ctx, domain.BlogPostFilter{Limit: limit, Offset: offset}, page, perPage)
}

func (s *BlogService) ListByAuthor(ctx context.Context, authorID uuid.UUID, page int) (*Page[domain.BlogPost], error) {
	page, perPage, limit, offset := pageWindow(page, defaultAuthorPerPage, defaultAuthorPerPage)
	return s.list(ctx, domain.BlogPostFilter{AuthorID: &authorID, Limit: limit, Offset: offset}, page, perPage)
}

func (s *BlogService) list(ctx context.Context, filter domain.BlogPostFilter, page, perPage int) (*Page[domain.BlogPost], error) {
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(ctx, items); err != nil {
		return nil, err
	}
	return &Page[domain.BlogPost]{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *BlogService) Get(ctx context.Context, slug string) (*domain.BlogPost, error) {
	post, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	post, err = s.withRelations(ctx, post)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTarget(ctx, domain.CommentTargetBlog, post.ID, recipeCommentPreview, 0)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}

func (s *BlogService) Create(ctx context.Context, actor *domain.User, input BlogPostInput) (*domain.BlogPost, error) {
	if !policy.Can(actor, policy.ActionCreate, policy.On(policy.ResourceBlogPost)) {
		return nil, ErrForbidden
	}
	if input.Title == nil {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Content == nil {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	draft, err := validateBlogDraft(input)
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
		if image, err = s.images.upload(ctx, "blog", *input.Image); err != nil {
			return nil, err
		}
		draft.ImageURL = &image.URL
	}

	exists := func(ctx context.Context, candidate string) (bool, error) {
		return s.posts.SlugExists(ctx, candidate, nil)
	}
	post, err := saveWithUniqueSlug(ctx, *draft.Title, exists, func(slug string) (*domain.BlogPost, error) {
		draft.Slug = &slug
		return s.posts.Create(ctx, actor.ID, draft, categoryIDs, tagIDs)
	})
	if err != nil {
		s.images.discard(ctx, image)
		return nil, err
	}
	return s.withRelations(ctx, post)
}

func (s *BlogService) Update(ctx context.Context, actor *domain.User, slug string, input BlogPostInput) (*domain.BlogPost, error) {
	current, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.ActionUpdate, policy.Owned(policy.ResourceBlogPost, current.UserID)) {
		return nil, ErrForbidden
	}
	draft, err := validateBlogDraft(input)
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
		if image, err = s.images.upload(ctx, "blog", *input.Image); err != nil {
			return nil, err
		}
		draft.ImageURL = &image.URL
	}

	save := func(slug string) (*domain.BlogPost, error) {
		if slug != "" {
			draft.Slug = &slug
		}
		return s.posts.Update(ctx, current.ID, draft, categoryIDs, tagIDs)
	}
	var post *domain.BlogPost
	if draft.Title != nil && *draft.Title != current.Title {
		exists := func(ctx context.Context, candidate string) (bool, error) {
			return s.posts.SlugExists(ctx, candidate, &current.ID)
		}
		post, err = saveWithUniqueSlug(ctx, *draft.Title, exists, save)
	} else {
		post, err = save("")
	}
	if err != nil {
		s.images.discard(ctx, image)
		if isNotFound(err) {
			return nil, ErrBlogPostNotFound
		}
		return nil, err
	}
	return s.withRelations(ctx, post)
}

func (s *BlogService) Delete(ctx context.Context, actor *domain.User, slug string) error {
	current, err := s.find(ctx, slug)
	if err != nil {
		return err
	}
	if !policy.Can(actor, policy.ActionDelete, policy.Owned(policy.ResourceBlogPost, current.UserID)) {
		return ErrForbidden
	}
	if err := s.posts.Delete(ctx, current.ID); err != nil {
		if isNotFound(err) {
			return ErrBlogPostNotFound
		}
		return err
	}
	return nil
}

func (s *BlogService) find(ctx context.Context, slug string) (*domain.BlogPost, error) {
	post, err := s.posts.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBlogPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *BlogService) withRelations(ctx context.Context, post *domain.BlogPost) (*domain.BlogPost, error) {
	items := []domain.BlogPost{*post}
	if err := s.attachRelations(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *BlogService) attachRelations(ctx context.Context, posts []domain.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	catMap, err := s.posts.CategoriesByPost(ctx, ids)
	if err != nil {
		return err
	}
	tagMap, err := s.posts.TagsByPost(ctx, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].Categories = nonNil(catMap[posts[i].ID])
		posts[i].Tags = nonNil(tagMap[posts[i].ID])
	}
	return nil
}

func validateBlogDraft(input BlogPostInput) (domain.BlogPostDraft, error) {
	var draft domain.BlogPostDraft
	if input.Title != nil {
		title, err := requireText("title", *input.Title, maxTitleLength)
		if err != nil {
			return draft, err
		}
		draft.Title = &title
	}
	if input.Content != nil {
		content, err := requireText("content", *input.Content, 0)
		if err != nil {
			return draft, err
		}
		draft.Content = &content
	}
	if input.Excerpt != nil {
		excerpt := strings.TrimSpace(*input.Excerpt)
		if len([]rune(excerpt)) > maxExcerptLength {
			return draft, fmt.Errorf("%w: excerpt may not be greater than %d characters", ErrValidation, maxExcerptLength)
		}
		draft.Excerpt = &excerpt
	}
	return draft, nil
}
