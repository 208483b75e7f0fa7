package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type referenceSource interface {
	Next() string
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type ContactService struct {
	messages   ports.ContactMessageRepository
	references referenceSource
}

func NewContactService(messages ports.ContactMessageRepository, references referenceSource) *ContactService {
	return &ContactService{messages: messages, references: references}
}

func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*domain.ContactMessage, error) {
	name, err := requireText("name", input.Name, maxNameLength)
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	subject, err := requireText("subject", input.Subject, maxTitleLength)
	if err != nil {
		return nil, err
	}
	message, err := requireText("message", input.Message, 5000)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(subject, "\r\n") {
		return nil, fmt.Errorf("%w: subject must be a single line", ErrValidation)
	}
	return s.messages.Create(ctx, domain.ContactMessage{
		Reference: s.references.Next(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
	})
}
