package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jjpaste/jjbin/models"
)

// Memory is a mutex-guarded in-memory backend implementing both stores. It
// mirrors the Postgres semantics exactly (duplicate-check order, view
// increments without updated_at bumps, cascade on user delete) and backs the
// handler and middleware tests.
type Memory struct {
	mu        sync.Mutex
	users     map[int]*models.User
	pastes    map[int]*models.Paste
	nextUser  int
	nextPaste int
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[int]*models.User),
		pastes:    make(map[int]*models.Paste),
		nextUser:  1,
		nextPaste: 1,
	}
}

// Users exposes the UserStore view of m.
func (m *Memory) Users() *MemoryUsers { return &MemoryUsers{m: m} }

// Pastes exposes the PasteStore view of m.
func (m *Memory) Pastes() *MemoryPastes { return &MemoryPastes{m: m} }

// MemoryUsers implements UserStore over a Memory backend.
type MemoryUsers struct {
	m *Memory
}

func (s *MemoryUsers) Create(_ context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, existing := range s.m.users {
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
	}
	for _, existing := range s.m.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}

	u.ID = s.m.nextUser
	s.m.nextUser++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.m.users[u.ID] = u
	return nil
}

func (s *MemoryUsers) ByUsername(_ context.Context, username string) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) ByID(_ context.Context, id int) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if u, ok := s.m.users[id]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) List(_ context.Context, page, perPage int) ([]models.User, int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	all := make([]models.User, 0, len(s.m.users))
	for _, u := range s.m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return slicePage(all, page, perPage), len(all), nil
}

func (s *MemoryUsers) Delete(_ context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for id, p := range s.m.pastes {
		if p.UserID != nil && *p.UserID == u.ID {
			delete(s.m.pastes, id)
		}
	}
	delete(s.m.users, u.ID)
	return nil
}

func (s *MemoryUsers) PasteCount(_ context.Context, userID int) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	count := 0
	for _, p := range s.m.pastes {
		if p.UserID != nil && *p.UserID == userID {
			count++
		}
	}
	return count, nil
}

// MemoryPastes implements PasteStore over a Memory backend.
type MemoryPastes struct {
	m *Memory
}

func (s *MemoryPastes) Create(_ context.Context, p *models.Paste) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for {
		p.UniqueID = NewUniqueID()
		if !s.uniqueIDTaken(p.UniqueID) {
			break
		}
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	p.Views = 0
	p.ID = s.m.nextPaste
	s.m.nextPaste++
	s.m.pastes[p.ID] = p
	s.link(p)
	return nil
}

func (s *MemoryPastes) uniqueIDTaken(uid string) bool {
	for _, p := range s.m.pastes {
		if p.UniqueID == uid {
			return true
		}
	}
	return false
}

func (s *MemoryPastes) link(p *models.Paste) {
	if p.UserID != nil {
		p.Author = s.m.users[*p.UserID]
	}
}

func (s *MemoryPastes) ByUniqueID(_ context.Context, uniqueID string) (*models.Paste, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range s.m.pastes {
		if p.UniqueID == uniqueID {
			s.link(p)
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryPastes) Update(_ context.Context, p *models.Paste, upd PasteUpdate) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Language != nil {
		p.Language = *upd.Language
	}
	if upd.IsPublic != nil {
		p.IsPublic = *upd.IsPublic
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryPastes) Delete(_ context.Context, p *models.Paste) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.pastes, p.ID)
	return nil
}

func (s *MemoryPastes) IncrementViews(_ context.Context, p *models.Paste) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p.Views++
	return nil
}

func (s *MemoryPastes) List(_ context.Context, f PasteFilter, page, perPage int) ([]models.Paste, int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var all []models.Paste
	for _, p := range s.m.pastes {
		if f.PublicOnly && !p.IsPublic {
			continue
		}
		if f.Language != "" && p.Language != f.Language {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Content), needle) {
				continue
			}
		}
		if f.UserID != nil && (p.UserID == nil || *p.UserID != *f.UserID) {
			continue
		}
		s.link(p)
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return slicePage(all, page, perPage), len(all), nil
}

func slicePage[T any](all []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(all) {
		return nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
