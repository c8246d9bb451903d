package services

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/opencourt/rotation-system/models"
	"github.com/opencourt/rotation-system/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockPlayerRepo struct {
	players map[int]*models.Player
	nextID  int
}

func newMockPlayerRepo(players ...*models.Player) *mockPlayerRepo {
	repo := &mockPlayerRepo{players: make(map[int]*models.Player), nextID: 1}
	for _, p := range players {
		cp := *p
		repo.players[cp.ID] = &cp
		if cp.ID >= repo.nextID {
			repo.nextID = cp.ID + 1
		}
	}
	return repo
}

func (m *mockPlayerRepo) Create(ctx context.Context, p *models.Player) error {
	for _, existing := range m.players {
		if existing.Name == p.Name {
			return repositories.ErrPlayerNameConflict
		}
	}
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.players[cp.ID] = &cp
	return nil
}

func (m *mockPlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, ok := m.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlayerRepo) ListByIDs(ctx context.Context, ids []int) ([]*models.Player, error) {
	var out []*models.Player
	for _, id := range ids {
		if p, ok := m.players[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPlayerRepo) List(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	var ids []int
	for id := range m.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var out []*models.Player
	for _, id := range ids {
		cp := *m.players[id]
		out = append(out, &cp)
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPlayerRepo) Update(ctx context.Context, p *models.Player) error {
	if _, ok := m.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	cp := *p
	m.players[cp.ID] = &cp
	return nil
}

func (m *mockPlayerRepo) Delete(ctx context.Context, id int) error {
	if _, ok := m.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(m.players, id)
	return nil
}

type mockSessionRepo struct {
	sessions map[int]*models.Session
	nextID   int
}

func newMockSessionRepo(sessions ...*models.Session) *mockSessionRepo {
	repo := &mockSessionRepo{sessions: make(map[int]*models.Session), nextID: 1}
	for _, s := range sessions {
		repo.sessions[s.ID] = s.Clone()
		if s.ID >= repo.nextID {
			repo.nextID = s.ID + 1
		}
	}
	return repo
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	session.ID = m.nextID
	m.nextID++
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id int) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *mockSessionRepo) List(ctx context.Context, filter repositories.ListSessionsFilter) ([]*models.Session, error) {
	var ids []int
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var out []*models.Session
	for _, id := range ids {
		s := m.sessions[id]
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		out = append(out, s.Clone())
	}
	return out, nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.Session) error {
	if _, ok := m.sessions[session.ID]; !ok {
		return repositories.ErrSessionNotFound
	}
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *mockSessionRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.SessionStatus) error {
	s, ok := m.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	s.Status = status
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id int) error {
	if _, ok := m.sessions[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}
