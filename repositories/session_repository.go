package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/opencourt/rotation-system/models"
)

var ErrSessionNotFound = errors.New("session not found")

type ListSessionsFilter struct {
	Status *models.SessionStatus
	Limit  int
	Offset int
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id int) (*models.Session, error)
	List(ctx context.Context, filter ListSessionsFilter) ([]*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.SessionStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const sessionColumns = `
	id, name, player_ids, paused_player_ids, courts, partnership_constraint,
	scoring_enabled, show_ratings, status, live_data, created_at`

func (r *postgresSessionRepository) Create(ctx context.Context, s *models.Session) error {
	courts, partnerships, liveData, err := marshalSessionDocs(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (
			name, player_ids, paused_player_ids, courts, partnership_constraint,
			scoring_enabled, show_ratings, status, live_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		s.Name, pq.Array(intsToInt64(s.PlayerIDs)), pq.Array(intsToInt64(s.PausedPlayerIDs)),
		courts, partnerships, s.ScoringEnabled, s.ShowRatings, s.Status, liveData,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSessionRepository) List(ctx context.Context, filter ListSessionsFilter) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	args := []interface{}{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session rows iteration error: %w", err)
	}
	return sessions, nil
}

// Update persists every mutable column of the session, including the
// full live_data document, so a saved session round-trips unchanged.
func (r *postgresSessionRepository) Update(ctx context.Context, s *models.Session) error {
	courts, partnerships, liveData, err := marshalSessionDocs(s)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions
		SET name = $1, player_ids = $2, paused_player_ids = $3, courts = $4,
			partnership_constraint = $5, scoring_enabled = $6, show_ratings = $7,
			status = $8, live_data = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		s.Name, pq.Array(intsToInt64(s.PlayerIDs)), pq.Array(intsToInt64(s.PausedPlayerIDs)),
		courts, partnerships, s.ScoringEnabled, s.ShowRatings, s.Status, liveData, s.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.SessionStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE sessions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	s := &models.Session{}
	var (
		playerIDs    pq.Int64Array
		pausedIDs    pq.Int64Array
		courts       []byte
		partnerships []byte
		liveData     []byte
	)

	err := row.Scan(
		&s.ID, &s.Name, &playerIDs, &pausedIDs, &courts, &partnerships,
		&s.ScoringEnabled, &s.ShowRatings, &s.Status, &liveData, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.PlayerIDs = int64sToInts(playerIDs)
	s.PausedPlayerIDs = int64sToInts(pausedIDs)

	if len(courts) > 0 {
		if err := json.Unmarshal(courts, &s.Courts); err != nil {
			return nil, fmt.Errorf("failed to decode session courts: %w", err)
		}
	}
	if len(partnerships) > 0 {
		s.Partnerships = &models.PartnershipConstraint{}
		if err := json.Unmarshal(partnerships, s.Partnerships); err != nil {
			return nil, fmt.Errorf("failed to decode partnership constraint: %w", err)
		}
	}
	if len(liveData) > 0 {
		s.LiveData = &models.LiveData{}
		if err := json.Unmarshal(liveData, s.LiveData); err != nil {
			return nil, fmt.Errorf("failed to decode session live data: %w", err)
		}
	}
	return s, nil
}

func marshalSessionDocs(s *models.Session) (courts, partnerships, liveData []byte, err error) {
	if s.Courts == nil {
		courts = []byte("[]")
	} else if courts, err = json.Marshal(s.Courts); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode session courts: %w", err)
	}
	if s.Partnerships != nil {
		if partnerships, err = json.Marshal(s.Partnerships); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode partnership constraint: %w", err)
		}
	}
	if s.LiveData != nil {
		if liveData, err = json.Marshal(s.LiveData); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode session live data: %w", err)
		}
	}
	return courts, partnerships, liveData, nil
}

func intsToInt64(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func int64sToInts(ids []int64) []int {
	if ids == nil {
		return nil
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
