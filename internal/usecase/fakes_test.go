package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"coffee-shop-api/internal/data/entity"
	"coffee-shop-api/internal/data/repository"
)

// memUserRepository is an in-memory UserRepository for service tests.
type memUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User
	writes int
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: make(map[int64]*entity.User)}
}

func clone(u *entity.User) *entity.User {
	c := *u
	if u.VerificationCode != nil {
		code := *u.VerificationCode
		c.VerificationCode = &code
	}
	if u.VerificationExpiresAt != nil {
		exp := *u.VerificationExpiresAt
		c.VerificationExpiresAt = &exp
	}
	return &c
}

func (m *memUserRepository) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = clone(user)
	m.writes++
	return nil
}

func (m *memUserRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		return clone(u), nil
	}
	return nil, nil
}

func (m *memUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (m *memUserRepository) FindAll(_ context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepository) Update(_ context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if patch.Email != nil {
		for other, u := range m.users {
			if other != id && u.Email == *patch.Email {
				return nil, repository.ErrEmailTaken
			}
		}
	}
	patch.Apply(stored)
	m.writes++
	return clone(stored), nil
}

func (m *memUserRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	m.writes++
	return nil
}

func (m *memUserRepository) SetVerificationCode(_ context.Context, id int64, code string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || u.IsVerified {
		return false, nil
	}
	u.SetVerification(code, expiresAt)
	m.writes++
	return true, nil
}

func (m *memUserRepository) ConfirmVerification(_ context.Context, id int64, code string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || !u.HasPendingCode() || *u.VerificationCode != code || !u.VerificationExpiresAt.Equal(expiresAt) {
		return false, nil
	}
	u.MarkVerified()
	m.writes++
	return true, nil
}

func (m *memUserRepository) DeleteUnverifiedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, u := range m.users {
		if !u.IsVerified && u.CreatedAt.Before(cutoff) {
			delete(m.users, id)
			n++
		}
	}
	if n > 0 {
		m.writes++
	}
	return n, nil
}

// get returns a copy of the row with the given email.
func (m *memUserRepository) get(email string) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return clone(u)
		}
	}
	return nil
}

// put stores a row as-is and returns its id.
func (m *memUserRepository) put(u *entity.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = clone(u)
	return u.ID
}

type sentCode struct {
	email string
	code  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentCode
}

func (f *fakeNotifier) SendVerificationCode(email, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentCode{email: email, code: code})
}

func (f *fakeNotifier) last() sentCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentCode{}
	}
	return f.sent[len(f.sent)-1]
}
