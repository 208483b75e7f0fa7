package service

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/foodieland/foodieland-api/internal/domain"
)

// fakeUserRepo keeps accounts in memory and applies the same conditional
// updates as the Postgres repository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	createErr     error
	issueCalls    int
	clearCalls    []string
	resetHashes   [][]byte
	profileUpdate *domain.ProfileUpdate
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
}

func (f *fakeUserRepo) put(u *domain.User) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.ID] = &cp
	return u
}

func (f *fakeUserRepo) get(id uuid.UUID) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.users[id]
	return &cp
}

func (f *fakeUserRepo) CreateEmailUser(ctx context.Context, name, email string, hash, salt []byte, challenge domain.OTPChallenge) (*domain.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	code, exp := challenge.Code, challenge.ExpiresAt
	u := &domain.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: hash, PasswordSalt: salt, OTPCode: &code, OTPExpiresAt: &exp}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpsertGoogleUser(ctx context.Context, googleID, email, name string, imageURL *string, verifiedAt time.Time) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u.GoogleID = &googleID
			if u.VerifiedAt == nil {
				u.VerifiedAt = &verifiedAt
				u.PasswordHash, u.PasswordSalt = nil, nil
				u.OTPCode, u.OTPExpiresAt = nil, nil
			}
			cp := *u
			return &cp, nil
		}
	}
	u := &domain.User{ID: uuid.New(), Name: name, Email: email, GoogleID: &googleID, ImageURL: imageURL, VerifiedAt: &verifiedAt}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileUpdate = &update
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if update.Email != nil {
		for _, other := range f.users {
			if other.ID != id && other.Email == *update.Email {
				return nil, &pgconn.PgError{Code: "23505"}
			}
		}
		u.Email = *update.Email
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = update.Bio
	}
	if update.ImageURL != nil {
		u.ImageURL = update.ImageURL
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) IssueChallenge(ctx context.Context, id uuid.UUID, challenge domain.OTPChallenge, cutoff time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issueCalls++
	u, ok := f.users[id]
	if !ok || (u.OTPExpiresAt != nil && u.OTPExpiresAt.After(cutoff)) {
		return sql.ErrNoRows
	}
	code, exp := challenge.Code, challenge.ExpiresAt
	u.OTPCode, u.OTPExpiresAt = &code, &exp
	return nil
}

func (f *fakeUserRepo) ClearChallenge(ctx context.Context, id uuid.UUID, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls = append(f.clearCalls, code)
	u, ok := f.users[id]
	if !ok || u.OTPCode == nil || *u.OTPCode != code {
		return sql.ErrNoRows
	}
	u.OTPCode, u.OTPExpiresAt = nil, nil
	return nil
}

func (f *fakeUserRepo) consume(id uuid.UUID, code string, now time.Time) (*domain.User, bool) {
	u, ok := f.users[id]
	if !ok || u.OTPCode == nil || *u.OTPCode != code || u.OTPExpiresAt.Before(now) {
		return nil, false
	}
	u.OTPCode, u.OTPExpiresAt = nil, nil
	return u, true
}

func (f *fakeUserRepo) ConsumeVerification(ctx context.Context, id uuid.UUID, code string, now time.Time) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.consume(id, code, now)
	if !ok {
		return nil, sql.ErrNoRows
	}
	if u.VerifiedAt == nil {
		at := now
		u.VerifiedAt = &at
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) ConsumePasswordReset(ctx context.Context, id uuid.UUID, code string, now time.Time, hash, salt []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.consume(id, code, now)
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash, u.PasswordSalt = hash, salt
	f.resetHashes = append(f.resetHashes, hash)
	return nil
}

type sentOTP struct {
	purpose domain.OTPPurpose
	email   string
	name    string
	code    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentOTP
	err  error
}

func (f *fakeMailer) SendOTP(ctx context.Context, purpose domain.OTPPurpose, email, name, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentOTP{purpose: purpose, email: email, name: name, code: code})
	return nil
}

func (f *fakeMailer) last() sentOTP {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeRoleRepo struct {
	assigned map[uuid.UUID][]domain.Role
	roles    map[string]domain.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{assigned: map[uuid.UUID][]domain.Role{}, roles: map[string]domain.Role{}}
}

func (f *fakeRoleRepo) GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	role, ok := f.roles[name]
	if !ok {
		role = domain.Role{ID: uuid.New(), Name: name}
		f.roles[name] = role
	}
	return &role, nil
}

func (f *fakeRoleRepo) AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	for _, r := range f.assigned[userID] {
		if r.ID == roleID {
			return nil
		}
	}
	for _, r := range f.roles {
		if r.ID == roleID {
			f.assigned[userID] = append(f.assigned[userID], r)
		}
	}
	return nil
}

func (f *fakeRoleRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	return append([]domain.Role(nil), f.assigned[userID]...), nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
	created  int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.Session{}}
}

func (f *fakeSessionRepo) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	f.created++
	s := &domain.Session{ID: int64(f.created), UserID: userID, Token: token, ExpiresAt: expiresAt, IsActive: true}
	f.sessions[token] = s
	return s, nil
}

func (f *fakeSessionRepo) DeactivateSession(ctx context.Context, token string) error {
	if s, ok := f.sessions[token]; ok {
		s.IsActive = false
	}
	return nil
}

func (f *fakeSessionRepo) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	s, ok := f.sessions[token]
	if !ok || !s.IsActive {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

type storedObject struct {
	bucket      string
	name        string
	contentType string
	size        int64
}

type fakeStorage struct {
	uploads []storedObject
	removed []string
	err     error
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, storedObject{bucket: bucket, name: objectName, contentType: contentType, size: size})
	return "http://minio.local/" + bucket + "/" + objectName, nil
}

func (f *fakeStorage) Remove(ctx context.Context, bucket, objectName string) error {
	f.removed = append(f.removed, bucket+"/"+objectName)
	return nil
}
