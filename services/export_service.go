package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opencourt/rotation-system/models"
	"github.com/opencourt/rotation-system/repositories"
	"github.com/opencourt/rotation-system/storage"
)

type ExportResult struct {
	SnapshotURL string `json:"snapshot_url"`
	StatsCSVURL string `json:"stats_csv_url"`
}

// ExportService writes a point-in-time copy of a session to object
// storage: the full session document as JSON and the player stats as
// CSV. Both uploads run concurrently.
type ExportService interface {
	ExportSession(ctx context.Context, sessionID int) (*ExportResult, error)
}

type exportService struct {
	sessionRepo repositories.SessionRepository
	playerRepo  repositories.PlayerRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewExportService(
	sessionRepo repositories.SessionRepository,
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ExportService {
	return &exportService{
		sessionRepo: sessionRepo,
		playerRepo:  playerRepo,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *exportService) ExportSession(ctx context.Context, sessionID int) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportNotConfigured
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %d: %w", sessionID, err)
	}
	players, err := s.playerRepo.ListByIDs(ctx, session.PlayerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load session players: %w", err)
	}

	snapshot, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	statsCSV, err := renderStatsCSV(session, players)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().UTC().Format("20060102T150405Z")
	prefix := fmt.Sprintf("exports/sessions/%d/%s", session.ID, stamp)

	result := &ExportResult{}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.uploader.Upload(gCtx, prefix+"-snapshot.json", "application/json", bytes.NewReader(snapshot))
		if err != nil {
			return fmt.Errorf("failed to upload session snapshot: %w", err)
		}
		result.SnapshotURL = res.Location
		return nil
	})
	g.Go(func() error {
		res, err := s.uploader.Upload(gCtx, prefix+"-stats.csv", "text/csv", bytes.NewReader(statsCSV))
		if err != nil {
			return fmt.Errorf("failed to upload stats csv: %w", err)
		}
		result.StatsCSVURL = res.Location
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("session exported",
		slog.Int("session_id", session.ID),
		slog.String("snapshot", result.SnapshotURL),
		slog.String("stats_csv", result.StatsCSVURL))
	return result, nil
}

func renderStatsCSV(session *models.Session, players []*models.Player) ([]byte, error) {
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	var ids []int
	if session.LiveData != nil {
		for id := range session.LiveData.PlayerStats {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"player_id", "name", "games_played", "games_sat_out", "total_score", "total_score_against", "point_differential"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write stats csv: %w", err)
	}
	for _, id := range ids {
		ps := session.LiveData.PlayerStats[id]
		name := ""
		if p, ok := byID[id]; ok {
			name = p.Name
		}
		record := []string{
			strconv.Itoa(id),
			name,
			strconv.Itoa(ps.GamesPlayed),
			strconv.Itoa(ps.GamesSatOut),
			strconv.Itoa(ps.TotalScore),
			strconv.Itoa(ps.TotalScoreAgainst),
			strconv.Itoa(ps.PointDifferential()),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write stats csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush stats csv: %w", err)
	}
	return buf.Bytes(), nil
}
