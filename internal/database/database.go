package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"stravadash/clients/strava"
)

var ErrSessionNotFound = errors.New("session not found")

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	Init() error

	CreateSession(ctx context.Context, token strava.Token) (string, error)
	GetSession(ctx context.Context, id string) (strava.Token, error)
	DeleteSession(ctx context.Context, id string) error
}

type service struct {
	db    *sql.DB
	dburl string
}

func New(dburl string) (Service, error) {
	db, err := sql.Open("sqlite3", dburl)
	if err != nil {
		// This will not be a connection error, but a DSN parse error or
		// another initialization error.
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	s := &service{db: db, dburl: dburl}
	if err := s.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		slog.Error("db down", "err", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	var sessions int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Session`).Scan(&sessions); err == nil {
		stats["sessions"] = strconv.Itoa(sessions)
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	slog.Info("disconnected from database", "url", s.dburl)
	return s.db.Close()
}

// Create initial tables in the database
func (s *service) Init() error {
	_, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS Session (
			id TEXT PRIMARY KEY,
			accessToken TEXT NOT NULL,
			refreshToken TEXT,
			expiresAt INTEGER,
			createdAt INTEGER NOT NULL
		)`,
	)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	return nil
}

func (s *service) CreateSession(ctx context.Context, token strava.Token) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO Session (id, accessToken, refreshToken, expiresAt, createdAt) VALUES (?, ?, ?, ?, ?)`,
		id, token.AccessToken, token.RefreshToken, token.ExpiresAt, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}
	return id, nil
}

func (s *service) GetSession(ctx context.Context, id string) (strava.Token, error) {
	var token strava.Token
	row := s.db.QueryRowContext(ctx,
		`SELECT accessToken, refreshToken, expiresAt FROM Session WHERE id = ?`,
		id,
	)
	if err := row.Scan(&token.AccessToken, &token.RefreshToken, &token.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return strava.Token{}, ErrSessionNotFound
		}
		return strava.Token{}, fmt.Errorf("error retrieving session: %w", err)
	}
	return token, nil
}

func (s *service) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Session WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}
