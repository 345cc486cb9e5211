package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

// Fetcher produces one observation batch per poll.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.SectionObservation, error)
}

// Downloader fetches the registrar feed over HTTP into the download
// directory and parses it. Implements Fetcher.
type Downloader struct {
	url    string
	dir    string
	client *http.Client
}

// NewDownloader creates a Downloader
func NewDownloader(url, dir string, timeout time.Duration) *Downloader {
	return &Downloader{
		url:    url,
		dir:    dir,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses the feed. The downloaded file is kept on disk
// under a unique name so a bad poll can be inspected afterwards.
func (d *Downloader) Fetch(ctx context.Context) ([]models.SectionObservation, error) {
	path, err := d.Download(ctx)
	if err != nil {
		return nil, err
	}
	return ParseFile(path)
}

// Download fetches the feed to a uniquely named file and returns its path.
func (d *Downloader) Download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return "", apperrors.NewTransportError("failed to build feed request", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", apperrors.NewTransportError("feed download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewTransportError(fmt.Sprintf("feed server returned status %d", resp.StatusCode), nil)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(d.dir, fmt.Sprintf("feed-%s.csv", uuid.New().String()))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	written, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", apperrors.NewTransportError("failed to write downloaded feed", err)
	}

	logger.Info().Str("path", path).Int64("bytes", written).Msg("Feed downloaded")
	return path, nil
}

// FileFetcher parses a local feed file instead of downloading. Used by
// poll --file.
type FileFetcher struct {
	Path string
}

// Fetch implements Fetcher
func (f *FileFetcher) Fetch(_ context.Context) ([]models.SectionObservation, error) {
	return ParseFile(f.Path)
}
