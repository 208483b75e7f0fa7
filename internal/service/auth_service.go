package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
	"github.com/foodieland/foodieland-api/internal/util"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("the email has already been taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAlreadyVerified     = errors.New("email is already verified")
	ErrEmailNotVerified    = errors.New("email is not verified")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrGoogleLoginDisabled = errors.New("google login is not configured")
)

const maxNameLength = 255

type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation *string
}

// AuthResult is a freshly issued bearer token and the account it belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type googleValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	sessions ports.SessionRepository
	otp      *otpIssuer
	jwt      *util.JWTManager

	googleAudience string
	validateGoogle googleValidator
	now            func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	sessions ports.SessionRepository,
	mailer ports.OTPMailer,
	jwtManager *util.JWTManager,
	googleAudience string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:          users,
		roles:          roles,
		sessions:       sessions,
		otp:            newOTPIssuer(users, mailer, logger),
		jwt:            jwtManager,
		googleAudience: strings.TrimSpace(googleAudience),
		validateGoogle: idtoken.Validate,
		now:            time.Now,
	}
}

// Register creates an unverified account holding a fresh registration code and
// mails the code.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if input.PasswordConfirmation != nil && *input.PasswordConfirmation != input.Password {
		return nil, fmt.Errorf("%w: password confirmation does not match", ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(input.Password)
	if err != nil {
		return nil, err
	}
	challenge, err := s.otp.newChallenge()
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateEmailUser(ctx, name, email, hash, salt, challenge)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if err := s.assignDefaultRole(ctx, user); err != nil {
		return nil, err
	}

	if err := s.otp.deliver(ctx, user, domain.OTPPurposeRegistration, challenge.Code); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyOTP consumes the outstanding code, marks the account verified and
// signs the caller in.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	code = strings.TrimSpace(code)
	if !util.IsOTPFormat(code) {
		return nil, ErrInvalidChallenge
	}
	if err := s.otp.check(user, code); err != nil {
		return nil, err
	}

	verified, err := s.users.ConsumeVerification(ctx, user.ID, code, s.now())
	if err != nil {
		if isNotFound(err) {
			// Another request consumed or replaced the code first.
			return nil, ErrInvalidChallenge
		}
		return nil, err
	}
	return s.issueToken(ctx, verified)
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified() {
		return ErrAlreadyVerified
	}
	return s.otp.reissue(ctx, user, domain.OTPPurposeRegistration)
}

// Login checks the password first and the verification state second, so an
// unverified account is only revealed to a caller holding its password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified() {
		return nil, ErrEmailNotVerified
	}
	return s.issueToken(ctx, user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.googleAudience == "" {
		return nil, ErrGoogleLoginDisabled
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, fmt.Errorf("%w: id_token is required", ErrValidation)
	}
	payload, err := s.validateGoogle(ctx, idToken, s.googleAudience)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	email, _ := payload.Claims["email"].(string)
	emailVerified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !emailVerified || payload.Subject == "" {
		return nil, ErrInvalidCredentials
	}
	name, _ := payload.Claims["name"].(string)
	if strings.TrimSpace(name) == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	var picture *string
	if p, ok := payload.Claims["picture"].(string); ok {
		picture = normalizeString(&p)
	}

	user, err := s.users.UpsertGoogleUser(ctx, payload.Subject, normalizeEmail(email), strings.TrimSpace(name), picture, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.assignDefaultRole(ctx, user); err != nil {
		return nil, err
	}
	return s.issueToken(ctx, user)
}

// Logout revokes the presented token only.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	return s.sessions.DeactivateSession(ctx, token)
}

// Authenticate resolves a bearer token to its account with roles loaded.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	session, err := s.sessions.FindActiveSession(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if err := s.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.Name, user.IsVerified())
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}
	if err := s.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) loadRoles(ctx context.Context, user *domain.User) error {
	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	user.Roles = roles
	return nil
}

func (s *AuthService) assignDefaultRole(ctx context.Context, user *domain.User) error {
	role, err := s.roles.GetOrCreateRole(ctx, domain.RoleUser, "Registered member")
	if err != nil {
		return err
	}
	return s.roles.AssignUserRole(ctx, user.ID, role.ID)
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len([]rune(name)) > maxNameLength {
		return fmt.Errorf("%w: name may not be greater than %d characters", ErrValidation, maxNameLength)
	}
	return nil
}

var fieldValidator = validator.New()

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if len(email) > 255 {
		return fmt.Errorf("%w: email may not be greater than 255 characters", ErrValidation)
	}
	if err := fieldValidator.Var(email, "email"); err != nil {
		return fmt.Errorf("%w: email must be a valid email address", ErrValidation)
	}
	return nil
}
