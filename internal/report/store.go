package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status enumerates the lifecycle of a report run.
type Status string

const (
	// StatusPending indicates the run is queued.
	StatusPending Status = "PENDING"
	// StatusInProgress indicates the pipeline is executing.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusReady indicates the result is available.
	StatusReady Status = "READY"
	// StatusFailed indicates the build errored.
	StatusFailed Status = "FAILED"
)

// Run wraps one report invocation: its lifecycle state plus, once ready,
// the computed result.
type Run struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Result    *Result   `json:"result,omitempty"`
}

var (
	// ErrRunNotFound occurs when no run exists under the given ID, or its
	// TTL expired.
	ErrRunNotFound = errors.New("report: run not found")
	// ErrUploadNotFound occurs when a staged upload expired before the
	// worker picked it up.
	ErrUploadNotFound = errors.New("report: staged upload not found")
)

// Store keeps runs and staged uploads in Redis with a bounded TTL. Nothing
// outlives the TTL; the service deliberately has no durable storage for
// uploaded data.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore instantiates the result store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func runKey(id string) string {
	return "report:run:" + id
}

func uploadKey(id string) string {
	return "report:upload:" + id
}

// SaveRun persists the run envelope, refreshing its TTL.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	if s == nil || s.client == nil {
		return errors.New("report: store not configured")
	}
	run.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("report: marshal run: %w", err)
	}
	if err := s.client.Set(ctx, runKey(run.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("report: save run: %w", err)
	}
	return nil
}

// Run fetches a run by ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	if s == nil || s.client == nil {
		return Run{}, errors.New("report: store not configured")
	}
	data, err := s.client.Get(ctx, runKey(id)).Bytes()
	if err == redis.Nil {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("report: load run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, fmt.Errorf("report: unmarshal run: %w", err)
	}
	return run, nil
}

// StageUpload parks the raw CSV bytes for an asynchronous build.
func (s *Store) StageUpload(ctx context.Context, id string, raw []byte) error {
	if err := s.client.Set(ctx, uploadKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("report: stage upload: %w", err)
	}
	return nil
}

// Upload retrieves staged CSV bytes.
func (s *Store) Upload(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, uploadKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("report: load upload: %w", err)
	}
	return data, nil
}

// DropUpload removes staged bytes once the build consumed them.
func (s *Store) DropUpload(ctx context.Context, id string) error {
	return s.client.Del(ctx, uploadKey(id)).Err()
}
