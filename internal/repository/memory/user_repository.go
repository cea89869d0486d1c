package memory

import (
	"context"
	"sync"
	"time"

	"diswantin/internal/domain"
	"diswantin/internal/domain/models"
)

// UserRepository implements repositories.UserRepository in memory
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*models.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]*models.User)}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) UpsertByGoogleID(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.GoogleID == user.GoogleID {
			existing.Email = user.Email
			*user = *existing
			return nil
		}
	}
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *UserRepository) UpdateTimezone(ctx context.Context, userID int64, timezone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Timezone = timezone
	return nil
}

// SessionRepository implements repositories.SessionRepository in memory
type SessionRepository struct {
	mu       sync.RWMutex
	nextID   int64
	sessions map[string]*models.Session
}

// NewSessionRepository creates an empty in-memory session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*models.Session)}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.Token]; exists {
		return domain.ErrConflict
	}
	r.nextID++
	session.ID = r.nextID
	copied := *session
	r.sessions[session.Token] = &copied
	return nil
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var swept int64
	for token, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, token)
			swept++
		}
	}
	return swept, nil
}
