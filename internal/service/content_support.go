package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/repository/ports"
	"github.com/foodieland/foodieland-api/internal/util"
)

const maxTagLength = 50

// uniqueSlug derives a slug from title and appends -1, -2, ... until exists
// reports it free.
func uniqueSlug(ctx context.Context, title string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		return "", fmt.Errorf("%w: title must contain letters or digits", ErrValidation)
	}
	for n := 0; ; n++ {
		candidate := util.SuffixSlug(base, n)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// slugAttempts bounds how often a save is retried after losing a slug to a
// concurrent writer.
const slugAttempts = 3

// saveWithUniqueSlug runs save with a free slug. The slug is only reserved by
// the row's unique index, so a unique violation means another request took it
// between the lookup and the write; a fresh slug is picked and save runs again.
func saveWithUniqueSlug[T any](ctx context.Context, title string, exists func(context.Context, string) (bool, error), save func(slug string) (T, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug, err := uniqueSlug(ctx, title, exists)
		if err != nil {
			return zero, err
		}
		out, err := save(slug)
		if err == nil {
			return out, nil
		}
		if !isUniqueViolation(err) {
			return zero, err
		}
	}
	return zero, ErrSlugConflict
}

// resolveTags finds or creates a tag per distinct slug and returns their ids in
// input order. A nil names slice yields nil.
func resolveTags(ctx context.Context, tags ports.TagRepository, names []string) ([]uuid.UUID, error) {
	if names == nil {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if len([]rune(name)) > maxTagLength {
			return nil, fmt.Errorf("%w: tag %q may not be greater than %d characters", ErrValidation, name, maxTagLength)
		}
		slug := util.Slugify(name)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		tag, err := tags.FirstOrCreate(ctx, slug, util.TitleCase(name))
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// resolveCategories checks that every id exists. A nil slice yields nil so
// updates keep the current links.
func resolveCategories(ctx context.Context, categories ports.CategoryRepository, ids []uuid.UUID, required bool) ([]uuid.UUID, error) {
	if ids == nil && !required {
		return nil, nil
	}
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if required && len(unique) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", ErrValidation)
	}
	if len(unique) == 0 {
		return unique, nil
	}
	existing, err := categories.ExistingIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(unique) {
		return nil, fmt.Errorf("%w: the selected category is invalid", ErrValidation)
	}
	return unique, nil
}

func requireText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if max > 0 && len([]rune(value)) > max {
		return "", fmt.Errorf("%w: %s may not be greater than %d characters", ErrValidation, field, max)
	}
	return value, nil
}

func cleanList(field string, values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s must have at least one item", ErrValidation, field)
	}
	return out, nil
}
