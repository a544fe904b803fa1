// Package store provides bundle sources: a directory-backed file store with
// an in-process LRU cache, and an optional Redis read-through layer for
// multi-instance deployments.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/domain"
)

// FileStore resolves patient identifiers to FHIR bundle files in a single
// directory. The directory is scanned once at construction; the identifier
// for each bundle is its file name without the .json extension. Raw bundle
// bytes are cached in a bounded LRU.
type FileStore struct {
	dir    string
	files  map[string]string
	cache  *lru.Cache[string, []byte]
	mu     sync.RWMutex
	logger *logrus.Logger
}

// NewFileStore creates a file store over the given directory. cacheSize
// bounds the number of raw bundles kept in memory.
func NewFileStore(dir string, cacheSize int, logger *logrus.Logger) (*FileStore, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle directory %s: %w", dir, err)
	}

	if cacheSize <= 0 {
		cacheSize = 32
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle cache: %w", err)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		patientID := strings.TrimSuffix(entry.Name(), ".json")
		files[patientID] = filepath.Join(dir, entry.Name())
	}

	logger.WithFields(logrus.Fields{
		"bundle_dir": dir,
		"patients":   len(files),
	}).Info("Loaded bundle directory")

	return &FileStore{
		dir:    dir,
		files:  files,
		cache:  cache,
		logger: logger,
	}, nil
}

// Resolve returns the raw bundle bytes for a patient identifier. Unknown
// identifiers return *domain.UnknownPatientError.
func (s *FileStore) Resolve(ctx context.Context, patientID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	path, ok := s.files[patientID]
	s.mu.RUnlock()
	if !ok {
		return nil, &domain.UnknownPatientError{PatientID: patientID}
	}

	if content, ok := s.cache.Get(patientID); ok {
		return content, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// The file disappeared after the startup scan.
			return nil, &domain.UnknownPatientError{PatientID: patientID}
		}
		return nil, fmt.Errorf("failed to read bundle %s: %w", path, err)
	}

	s.cache.Add(patientID, content)
	s.logger.WithFields(logrus.Fields{
		"patient_id": patientID,
		"bytes":      len(content),
	}).Debug("Loaded bundle from disk")

	return content, nil
}

// Patients lists the identifiers this store can resolve, sorted.
func (s *FileStore) Patients() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
