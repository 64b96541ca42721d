package service

import (
	"context"
	"sync"
	"time"

	"github.com/scenevault/scenevault/internal/model"
	"github.com/scenevault/scenevault/internal/repository"
)

// memoryStore is an in-memory UserStore and SceneStore.
type memoryStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	scenes map[string][]byte
	docs   map[string]*model.SceneDocument

	// err, when set, is returned by every call.
	err error
	// raceUsername makes CreateUser behave as if a concurrent insert won.
	raceUsername bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  make(map[string]*model.User),
		scenes: make(map[string][]byte),
		docs:   make(map[string]*model.SceneDocument),
	}
}

func (m *memoryStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.raceUsername {
		return repository.ErrUsernameExists
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memoryStore) UsernameExists(_ context.Context, username string) (bool, error) {
	u, err := m.find(func(u *model.User) bool { return u.Username == username })
	return u != nil, err
}

func (m *memoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	u, err := m.find(func(u *model.User) bool { return u.Email == email })
	return u != nil, err
}

func (m *memoryStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return m.get(func(u *model.User) bool { return u.Username == username })
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return m.get(func(u *model.User) bool { return u.Email == email })
}

func (m *memoryStore) get(match func(*model.User) bool) (*model.User, error) {
	u, err := m.find(match)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryStore) find(match func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) UpsertScene(_ context.Context, doc *model.SceneDocument) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}

	content, err := doc.Content.MarshalContent()
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	existing, ok := m.docs[doc.UserID]
	if ok {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	} else {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	m.scenes[doc.UserID] = content
	m.docs[doc.UserID] = &model.SceneDocument{
		ID:        doc.ID,
		UserID:    doc.UserID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	return !ok, nil
}

func (m *memoryStore) GetSceneByUserID(_ context.Context, userID string) (*model.SceneDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	meta, ok := m.docs[userID]
	if !ok {
		return nil, repository.ErrSceneNotFound
	}
	content, err := model.UnmarshalScene(m.scenes[userID])
	if err != nil {
		return nil, err
	}

	doc := *meta
	doc.Content = content
	return &doc, nil
}

func (m *memoryStore) sceneCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}
