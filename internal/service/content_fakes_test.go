package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type fakeRecipeRepo struct {
	bySlug map[string]*domain.Recipe

	createDraft      domain.RecipeDraft
	createCategories []uuid.UUID
	createTags       []uuid.UUID
	createErr        error

	// raceCreates makes that many Create calls lose their slug to a
	// concurrent insert.
	raceCreates int

	updateDraft      domain.RecipeDraft
	updateCategories []uuid.UUID
	updateCalls      int

	deleted      []uuid.UUID
	listFilter   domain.RecipeFilter
	slugQueries  []string
	slugExcludes []*uuid.UUID
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{bySlug: map[string]*domain.Recipe{}}
}

func (f *fakeRecipeRepo) add(r domain.Recipe) *domain.Recipe {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	f.bySlug[r.Slug] = &r
	return &r
}

func (f *fakeRecipeRepo) Create(ctx context.Context, userID uuid.UUID, draft domain.RecipeDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.Recipe, error) {
	f.createDraft, f.createCategories, f.createTags = draft, categoryIDs, tagIDs
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.raceCreates > 0 {
		f.raceCreates--
		f.add(domain.Recipe{Title: *draft.Title, Slug: *draft.Slug})
		return nil, &pgconn.PgError{Code: "23505", ConstraintName: "recipes_slug_key"}
	}
	r := domain.Recipe{ID: uuid.New(), UserID: userID, Title: *draft.Title, Slug: *draft.Slug, ImageURL: draft.ImageURL}
	return f.add(r), nil
}

func (f *fakeRecipeRepo) Update(ctx context.Context, id uuid.UUID, draft domain.RecipeDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.Recipe, error) {
	f.updateCalls++
	f.updateDraft, f.updateCategories = draft, categoryIDs
	for slug, r := range f.bySlug {
		if r.ID != id {
			continue
		}
		if draft.Title != nil {
			r.Title = *draft.Title
		}
		if draft.Slug != nil {
			delete(f.bySlug, slug)
			r.Slug = *draft.Slug
			f.bySlug[r.Slug] = r
		}
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRecipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRecipeRepo) FindBySlug(ctx context.Context, slug string) (*domain.Recipe, error) {
	r, ok := f.bySlug[slug]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecipeRepo) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	f.slugQueries = append(f.slugQueries, slug)
	f.slugExcludes = append(f.slugExcludes, excludeID)
	r, ok := f.bySlug[slug]
	if !ok {
		return false, nil
	}
	return excludeID == nil || r.ID != *excludeID, nil
}

func (f *fakeRecipeRepo) List(ctx context.Context, filter domain.RecipeFilter) ([]domain.Recipe, error) {
	f.listFilter = filter
	out := make([]domain.Recipe, 0, len(f.bySlug))
	for _, r := range f.bySlug {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRecipeRepo) Count(ctx context.Context, filter domain.RecipeFilter) (int64, error) {
	return int64(len(f.bySlug)), nil
}

func (f *fakeRecipeRepo) CategoriesByRecipe(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Category, error) {
	return map[uuid.UUID][]domain.Category{}, nil
}

func (f *fakeRecipeRepo) TagsByRecipe(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	return map[uuid.UUID][]domain.Tag{}, nil
}

type fakeCategoryRepo struct {
	byID         map[uuid.UUID]*domain.Category
	recipeCounts map[uuid.UUID]int64
	deleted      []uuid.UUID
	deleteErr    error
	created      []string
}

func newFakeCategoryRepo(cats ...domain.Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{byID: map[uuid.UUID]*domain.Category{}, recipeCounts: map[uuid.UUID]int64{}}
	for i := range cats {
		c := cats[i]
		f.byID[c.ID] = &c
	}
	return f
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeCategoryRepo) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range f.byID {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCategoryRepo) Create(ctx context.Context, name, slug string, description *string) (*domain.Category, error) {
	for _, c := range f.byID {
		if c.Name == name {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	f.created = append(f.created, slug)
	c := &domain.Category{ID: uuid.New(), Name: name, Slug: slug, Description: description}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, id uuid.UUID, name, slug string, description *string) (*domain.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c.Name, c.Slug, c.Description = name, slug, description
	return c, nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return sql.ErrNoRows
	}
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

func (f *fakeCategoryRepo) CountRecipes(ctx context.Context, id uuid.UUID) (int64, error) {
	return f.recipeCounts[id], nil
}

func (f *fakeCategoryRepo) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := f.byID[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeTagRepo struct {
	bySlug map[string]*domain.Tag
	calls  []string
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{bySlug: map[string]*domain.Tag{}}
}

func (f *fakeTagRepo) FirstOrCreate(ctx context.Context, slug, name string) (*domain.Tag, error) {
	f.calls = append(f.calls, slug)
	if t, ok := f.bySlug[slug]; ok {
		return t, nil
	}
	t := &domain.Tag{ID: uuid.New(), Slug: slug, Name: name}
	f.bySlug[slug] = t
	return t, nil
}

type fakeCommentRepo struct {
	byID    map[uuid.UUID]*domain.Comment
	deleted []uuid.UUID
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byID: map[uuid.UUID]*domain.Comment{}}
}

func (f *fakeCommentRepo) Create(ctx context.Context, userID uuid.UUID, target domain.CommentTarget, targetID uuid.UUID, body string) (*domain.Comment, error) {
	c := &domain.Comment{ID: uuid.New(), UserID: userID, TargetType: target, TargetID: targetID, Body: body}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommentRepo) UpdateBody(ctx context.Context, id uuid.UUID, body string) (*domain.Comment, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c.Body = body
	cp := *c
	return &cp, nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCommentRepo) ListByTarget(ctx context.Context, target domain.CommentTarget, targetID uuid.UUID, limit, offset int) ([]domain.Comment, error) {
	out := make([]domain.Comment, 0)
	for _, c := range f.byID {
		if c.TargetType == target && c.TargetID == targetID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) CountByTarget(ctx context.Context, target domain.CommentTarget, targetID uuid.UUID) (int64, error) {
	items, _ := f.ListByTarget(ctx, target, targetID, 0, 0)
	return int64(len(items)), nil
}

type favoriteKey struct{ user, recipe uuid.UUID }

type fakeFavoriteRepo struct {
	set map[favoriteKey]bool
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{set: map[favoriteKey]bool{}}
}

func (f *fakeFavoriteRepo) Toggle(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	k := favoriteKey{userID, recipeID}
	f.set[k] = !f.set[k]
	return f.set[k], nil
}

func (f *fakeFavoriteRepo) Exists(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	return f.set[favoriteKey{userID, recipeID}], nil
}

func (f *fakeFavoriteRepo) RecipeIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for k, on := range f.set {
		if on && k.user == userID {
			out = append(out, k.recipe)
		}
	}
	return out, nil
}

func memberUser() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Member", Roles: []domain.Role{{Name: domain.RoleUser}}}
}

func adminUser() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Admin", Roles: []domain.Role{{Name: domain.RoleUser}, {Name: domain.RoleAdmin}}}
}
