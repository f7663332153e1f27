package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/customer-analytics/internal/config"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

// Report is one persisted export.
type Report struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`    // e.g. "trends"
	Request   string          `json:"request"` // canonical description of the parameters
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// ReportRef locates a saved report.
type ReportRef struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage persists reports either on local disk or in S3.
type Storage struct {
	config config.ReportsConfig
	mu     sync.Mutex

	// AWS storage (optional)
	aws *AWSStorage
}

// New creates a Storage for the configured backend.
func New(ctx context.Context, cfg config.ReportsConfig) (*Storage, error) {
	s := &Storage{config: cfg}

	switch cfg.Type {
	case "s3":
		awsStorage, err := NewAWSStorage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.GetAWSProfile())
		if err != nil {
			return nil, fmt.Errorf("initializing S3 report storage: %w", err)
		}
		s.aws = awsStorage
	case "local", "":
		if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
			return nil, fmt.Errorf("creating report directory: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown report storage type %q", cfg.Type)
	}
	return s, nil
}

// Backend names the storage backend in use.
func (s *Storage) Backend() string {
	if s.aws != nil {
		return "s3"
	}
	return "local"
}

func (s *Storage) key(kind, id string) string {
	return path.Join(s.config.S3Prefix, kind, id+".json")
}

// SaveReport writes r, assigning an ID and creation time when unset.
func (s *Storage) SaveReport(ctx context.Context, r *Report) (ReportRef, error) {
	if r.Kind == "" {
		return ReportRef{}, errors.New("report kind is required")
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	ref := ReportRef{ID: r.ID, Kind: r.Kind, CreatedAt: r.CreatedAt}

	if s.aws != nil {
		key := s.key(r.Kind, r.ID)
		meta := map[string]string{"report-kind": r.Kind, "report-id": r.ID}
		if err := s.aws.SaveToS3(ctx, key, r, meta); err != nil {
			return ReportRef{}, err
		}
		ref.Location = "s3://" + s.aws.bucket + "/" + key
		return ref, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.saveToFile(r.Kind, r.ID, r)
	if err != nil {
		return ReportRef{}, fmt.Errorf("saving report %s: %w", r.ID, err)
	}
	ref.Location = p
	return ref, nil
}

// GetReport loads a saved report.
func (s *Storage) GetReport(ctx context.Context, kind, id string) (*Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var r Report
	if s.aws != nil {
		if err := s.aws.GetFromS3(ctx, s.key(kind, id), &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadFromFile(kind, id, &r); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading report %s: %w", id, err)
	}
	return &r, nil
}

// Check verifies the backend is reachable and writable.
func (s *Storage) Check(ctx context.Context) error {
	if s.aws != nil {
		return s.aws.Check(ctx)
	}
	probe, err := os.CreateTemp(s.config.LocalPath, ".health-*")
	if err != nil {
		return fmt.Errorf("report directory not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// saveToFile saves data to a JSON file and returns its path.
func (s *Storage) saveToFile(category, key string, data interface{}) (string, error) {
	dir := filepath.Join(s.config.LocalPath, filepath.Base(category))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	// Sanitize key for filename
	safeKey := filepath.Base(key)
	p := filepath.Join(dir, safeKey+".json")

	file, err := os.Create(p)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return p, encoder.Encode(data)
}

// loadFromFile loads data from a JSON file
func (s *Storage) loadFromFile(category, key string, data interface{}) error {
	safeKey := filepath.Base(key)
	p := filepath.Join(s.config.LocalPath, filepath.Base(category), safeKey+".json")

	file, err := os.Open(p)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(data)
}
