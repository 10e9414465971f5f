package dataset

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/JARAWA/JOSAA-preference/internal/models"
)

// Source fetches a full cutoff dataset from somewhere.
type Source interface {
	// Fetch retrieves and parses the complete cutoff dataset.
	Fetch(ctx context.Context) ([]models.HistoricalRecord, error)

	// Name identifies the source in logs.
	Name() string
}

// FileSource reads the cutoff CSV from local disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by a local CSV file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads and parses the file.
func (s *FileSource) Fetch(ctx context.Context) ([]models.HistoricalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.path)
}

// Name identifies the source in logs.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// RemoteSource downloads the cutoff CSV over HTTP.
type RemoteSource struct {
	client *RateLimitedClient
	url    string
	logger *logrus.Logger
}

// NewRemoteSource creates a source that downloads the cutoff CSV from url.
func NewRemoteSource(client *RateLimitedClient, url string, logger *logrus.Logger) *RemoteSource {
	return &RemoteSource{client: client, url: url, logger: logger}
}

// Fetch downloads and parses the remote file.
func (s *RemoteSource) Fetch(ctx context.Context) ([]models.HistoricalRecord, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cutoff file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cutoff host returned status %d", resp.StatusCode)
	}

	records, err := LoadCSV(resp.Body)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"url":     s.url,
		"records": len(records),
	}).Info("Fetched remote cutoff dataset")
	return records, nil
}

// Name identifies the source in logs.
func (s *RemoteSource) Name() string {
	return "remote:" + s.url
}
