package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/user"
)

// memoryStore mirrors the repository's semantics, unique columns included.
type memoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[uuid.UUID]*user.User)}
}

func (s *memoryStore) byEmail(email string) *user.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *memoryStore) taken(id uuid.UUID, match func(*user.User) bool) bool {
	for _, u := range s.users {
		if u.ID != id && match(u) {
			return true
		}
	}
	return false
}

func (s *memoryStore) UpsertPending(_ context.Context, p user.PendingSignup) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.byEmail(p.Email)
	if existing != nil && existing.IsVerified {
		return nil, user.ErrAlreadyRegistered
	}

	id := uuid.New()
	if existing != nil {
		id = existing.ID
	}
	if p.Phone != "" && s.taken(id, func(u *user.User) bool { return u.Phone == p.Phone }) {
		return nil, user.ErrDuplicatePhone
	}

	expires := p.VerifyExpires
	u := &user.User{
		ID:            id,
		Email:         p.Email,
		Name:          p.Name,
		Nickname:      p.Nickname,
		Phone:         p.Phone,
		PasswordHash:  p.PasswordHash,
		VerifyToken:   p.VerifyToken,
		VerifyExpires: &expires,
	}
	s.users[id] = u

	cp := *u
	return &cp, nil
}

func (s *memoryStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.byEmail(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, user.ErrNotFound
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, user.ErrNotFound
}

func (s *memoryStore) ConsumeVerifyToken(_ context.Context, token string, now time.Time) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.VerifyToken == token && u.VerifyExpires != nil && u.VerifyExpires.After(now) {
			u.IsVerified = true
			u.VerifyToken = ""
			u.VerifyExpires = nil
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memoryStore) UpdateProfile(_ context.Context, id uuid.UUID, upd user.ProfileUpdate) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if upd.Nickname != nil && *upd.Nickname != "" && s.taken(id, func(o *user.User) bool { return o.Nickname == *upd.Nickname }) {
		return nil, user.ErrDuplicateNickname
	}
	if upd.Phone != nil && *upd.Phone != "" && s.taken(id, func(o *user.User) bool { return o.Phone == *upd.Phone }) {
		return nil, user.ErrDuplicatePhone
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Nickname != nil {
		u.Nickname = *upd.Nickname
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}

	cp := *u
	return &cp, nil
}

// seedVerified stores a verified account with the given password.
func (s *memoryStore) seedVerified(email, password string) *user.User {
	hash, err := HashPassword(password)
	if err != nil {
		panic(err)
	}

	u := &user.User{ID: uuid.New(), Email: email, Name: "Reader", PasswordHash: hash, IsVerified: true}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()

	cp := *u
	return &cp
}

type sentMail struct {
	to, name, token string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, to, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, token: token})
	return nil
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

var errSMTPDown = errors.New("smtp: connection refused")

type testEnv struct {
	store   *memoryStore
	mailer  *recordingMailer
	tokens  *PasetoService
	service *Service
	now     time.Time
}

func newTestEnv() *testEnv {
	tokens, err := NewPasetoService(testPasetoKey)
	if err != nil {
		panic(err)
	}

	env := &testEnv{
		store:  newMemoryStore(),
		mailer: &recordingMailer{},
		tokens: tokens,
		now:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	tokens.now = clock

	env.service = NewService(env.store, tokens, env.mailer, logging.NewLogger(true), 7*24*time.Hour, 24*time.Hour).
		WithClock(clock)

	return env
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:           "  Reader@Example.com ",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Name:            "김독서",
		Phone:           "010-1234-5678",
	}
}
