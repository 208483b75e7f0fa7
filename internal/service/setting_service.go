package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/policy"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

var ErrSettingNotFound = errors.New("setting not found")

var settingKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,99}$`)

type SettingService struct {
	settings ports.SettingRepository
}

func NewSettingService(settings ports.SettingRepository) *SettingService {
	return &SettingService{settings: settings}
}

func (s *SettingService) Get(ctx context.Context, key string) (*domain.Setting, error) {
	key, err := validateSettingKey(key)
	if err != nil {
		return nil, err
	}
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return setting, nil
}

// Put stores value under key. Only JSON objects and arrays are accepted.
func (s *SettingService) Put(ctx context.Context, actor *domain.User, key string, value domain.JSONDocument) (*domain.Setting, error) {
	if !policy.Can(actor, policy.ActionUpdate, policy.On(policy.ResourceSetting)) {
		return nil, ErrForbidden
	}
	key, err := validateSettingKey(key)
	if err != nil {
		return nil, err
	}
	if !value.IsContainer() {
		return nil, fmt.Errorf("%w: value must be an object or array", ErrValidation)
	}
	return s.settings.Upsert(ctx, key, value)
}

func validateSettingKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if !settingKeyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: invalid setting key", ErrValidation)
	}
	return key, nil
}
