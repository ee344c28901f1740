package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.ID] = cloneUser(u)
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := cloneUser(user)
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

// stubSessionRepo is an in-memory SessionRepository.
type stubSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session // by token
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.Token] = &clone
	return nil
}

func (r *stubSessionRepo) FindByToken(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, domain.ErrSessionInvalid
}

func (r *stubSessionRepo) Deactivate(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || !s.Active {
		return false, nil
	}
	s.Active = false
	return true, nil
}

func (r *stubSessionRepo) DeactivateByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID {
			s.Active = false
		}
	}
	return nil
}

func (r *stubSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// stubRBACRepo is an in-memory RBACRepository.
type stubRBACRepo struct {
	levels map[string]*domain.AccessLevel // by name
	grants map[string]map[string]bool     // levelID -> permission name -> granted
}

func newStubRBACRepo() *stubRBACRepo {
	return &stubRBACRepo{
		levels: make(map[string]*domain.AccessLevel),
		grants: make(map[string]map[string]bool),
	}
}

func (r *stubRBACRepo) addLevel(name string, rank int) *domain.AccessLevel {
	level := &domain.AccessLevel{ID: uuid.NewString(), Name: name, Rank: rank}
	r.levels[name] = level
	r.grants[level.ID] = make(map[string]bool)
	return level
}

func (r *stubRBACRepo) grant(levelID, perm string) {
	r.grants[levelID][perm] = true
}

func (r *stubRBACRepo) FindLevelByName(_ context.Context, name string) (*domain.AccessLevel, error) {
	if l, ok := r.levels[name]; ok {
		clone := *l
		return &clone, nil
	}
	return nil, domain.ErrLevelNotFound
}

func (r *stubRBACRepo) HasGrant(_ context.Context, levelID, permissionName string) (bool, error) {
	return r.grants[levelID][permissionName], nil
}

func (r *stubRBACRepo) HasModuleGrant(_ context.Context, levelID, module string) (bool, error) {
	prefix := module + "."
	for name, granted := range r.grants[levelID] {
		if granted && len(name) > len(prefix) && name[:len(prefix)] == prefix {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRBACRepo) PermissionsForLevel(_ context.Context, levelID string) ([]string, error) {
	var names []string
	for name, granted := range r.grants[levelID] {
		if granted {
			names = append(names, name)
		}
	}
	return names, nil
}

// recordingAudit captures audit entries synchronously.
type recordingAudit struct {
	mu      sync.Mutex
	entries []domain.AccessLog
}

func (a *recordingAudit) Record(_ context.Context, entry domain.AccessLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) byAction(action string) []domain.AccessLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.AccessLog
	for _, e := range a.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// stubThrottle counts failures in memory.
type stubThrottle struct {
	failures map[string]int
	limit    int
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), limit: limit}
}

func (t *stubThrottle) TooManyFailures(_ context.Context, email, ip string) bool {
	return t.failures[email+ip] >= t.limit
}

func (t *stubThrottle) RecordFailure(_ context.Context, email, ip string) {
	t.failures[email+ip]++
}

func (t *stubThrottle) Reset(_ context.Context, email, ip string) {
	delete(t.failures, email+ip)
}
