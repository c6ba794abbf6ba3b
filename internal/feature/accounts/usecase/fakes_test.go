package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"blog_backend/internal/feature/accounts/domain/entity"
	articleentity "blog_backend/internal/feature/articles/domain/entity"
)

// fakeUserRepository is an in-memory UserRepository. Records are copied on
// the way in and out so tests observe only what was actually saved.
type fakeUserRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]entity.User

	// UpdateFunc, when set, replaces Update.
	UpdateFunc func(user *entity.User) error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[uint]entity.User{}}
}

func (r *fakeUserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepository) FindByID(_ context.Context, id uint) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepository) FindFirstByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *entity.User
	for _, u := range r.users {
		if u.Email == email && (found == nil || u.ID < found.ID) {
			u := u
			found = &u
		}
	}
	if found == nil {
		return nil, ErrUserNotFound
	}
	return found, nil
}

func (r *fakeUserRepository) Update(_ context.Context, user *entity.User) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(user)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepository) get(id uint) entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *fakeUserRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// fakeProfileRepository is an in-memory ProfileRepository.
type fakeProfileRepository struct {
	mu       sync.Mutex
	nextID   uint
	profiles map[uint]entity.Profile // keyed by user ID
}

func newFakeProfileRepository() *fakeProfileRepository {
	return &fakeProfileRepository{profiles: map[uint]entity.Profile{}}
}

func (r *fakeProfileRepository) Create(_ context.Context, p *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UserID]; ok {
		return errors.New("UNIQUE constraint failed: profiles.user_id")
	}
	r.nextID++
	p.ID = r.nextID
	r.profiles[p.UserID] = *p
	return nil
}

func (r *fakeProfileRepository) FindByUserID(_ context.Context, userID uint) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (r *fakeProfileRepository) Update(_ context.Context, p *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = *p
	return nil
}

func (r *fakeProfileRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

// fakeTokenRepository is an in-memory TokenRepository.
type fakeTokenRepository struct {
	mu     sync.Mutex
	nextID uint
	tokens map[uint]entity.AuthToken
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{tokens: map[uint]entity.AuthToken{}}
}

func (r *fakeTokenRepository) Create(_ context.Context, t *entity.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.tokens[t.ID] = *t
	return nil
}

func (r *fakeTokenRepository) FindByToken(_ context.Context, token string) (*entity.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, ErrTokenNotFound
}

func (r *fakeTokenRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
	return nil
}

func (r *fakeTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if !t.IsAlive(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepository) byUser(userID uint) []entity.AuthToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.AuthToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (r *fakeTokenRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// fakeSessionRepository is an in-memory SessionRepository.
type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: map[string]entity.Session{}}
}

func (r *fakeSessionRepository) Create(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepository) FindByID(_ context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepository) active(userID uint) []entity.Session {
	var out []entity.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsValid() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeSessionRepository) FindByUserID(_ context.Context, userID uint) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Session
	for _, s := range r.active(userID) {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

func (r *fakeSessionRepository) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	r.sessions[id] = s
	return nil
}

func (r *fakeSessionRepository) RevokeAllByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
			r.sessions[id] = s
		}
	}
	return nil
}

func (r *fakeSessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepository) CountByUserID(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.active(userID))), nil
}

func (r *fakeSessionRepository) DeleteOldestByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	active := r.active(userID)
	if len(active) == 0 {
		return nil
	}
	delete(r.sessions, active[0].ID)
	return nil
}

func (r *fakeSessionRepository) activeCount(userID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active(userID))
}

// sentMail is a message captured by fakeMailer.
type sentMail struct {
	To, Subject, Body, HTMLBody string
}

// fakeMailer records messages; Err makes every send fail after recording.
type fakeMailer struct {
	mu   sync.Mutex
	Sent []sentMail
	Err  error
}

func (m *fakeMailer) SendMail(_ context.Context, to, subject, body, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMail{To: to, Subject: subject, Body: body, HTMLBody: htmlBody})
	return m.Err
}

// fakeAvatarStorage is an in-memory AvatarStorage.
type fakeAvatarStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeAvatarStorage() *fakeAvatarStorage {
	return &fakeAvatarStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeAvatarStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *fakeAvatarStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// fakeArticleRepository serves a fixed, newest-first slice.
type fakeArticleRepository struct {
	articles []articleentity.Article
}

func (r *fakeArticleRepository) CountByAuthor(_ context.Context, authorID uint) (int64, error) {
	var n int64
	for _, a := range r.articles {
		if a.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (r *fakeArticleRepository) ListByAuthor(_ context.Context, authorID uint, offset, limit int) ([]articleentity.Article, error) {
	var mine []articleentity.Article
	for _, a := range r.articles {
		if a.AuthorID == authorID {
			mine = append(mine, a)
		}
	}
	if offset >= len(mine) {
		return nil, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], nil
}

// mockJWTGenerator is a mock implementation of JWTGenerator interface.
type mockJWTGenerator struct {
	// GenerateTokenFunc is called when the GenerateToken method is invoked.
	GenerateTokenFunc func(userID uint, username, sessionID string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, username, sessionID string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, username, sessionID)
	}
	// Default: return a dummy token
	return "mock-jwt-token", nil
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
