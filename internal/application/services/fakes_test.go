package services

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"account-service/internal/domain/entities"
	"account-service/internal/domain/repositories"
	"account-service/internal/infrastructure"
	"account-service/internal/messaging"
)

var errStoreDown = errors.New("store down")

type memoryUserRepository struct {
	mu     sync.Mutex
	users  map[string]entities.User
	nextId int
	err    error
	// vanishOnUpdate deletes the record just before Update applies.
	vanishOnUpdate bool
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]entities.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *entities.ValidatedUser) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, repositories.ErrDuplicateEmail
		}
	}
	r.nextId++
	created := *user.GetUser()
	created.Id = strconv.Itoa(r.nextId)
	r.users[created.Id] = created
	return &created, nil
}

func (r *memoryUserRepository) FindAll(context.Context) ([]*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	users := make([]*entities.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		users = append(users, &u)
	}
	return users, nil
}

func (r *memoryUserRepository) FindById(_ context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *entities.User) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.vanishOnUpdate {
		delete(r.users, user.Id)
	}
	if _, ok := r.users[user.Id]; !ok {
		return nil, nil
	}
	r.users[user.Id] = *user
	saved := *user
	return &saved, nil
}

func (r *memoryUserRepository) UpdateProfile(_ context.Context, id string, name, email *string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if email != nil {
		for otherId, other := range r.users {
			if otherId != id && other.Email == *email {
				return nil, repositories.ErrDuplicateEmail
			}
		}
	}
	u.UpdateProfile(name, email)
	r.users[id] = u
	return &u, nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	delete(r.users, id)
	return &u, nil
}

func (r *memoryUserRepository) Ping(context.Context) error {
	return r.err
}

func (r *memoryUserRepository) stored(email string) entities.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return entities.User{}
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []infrastructure.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg infrastructure.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ messaging.UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return p.err
}
