package fide

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/fideboard/pkg/logger"
)

// DefaultBaseURL hosts the monthly list archives.
const DefaultBaseURL = "http://ratings.fide.com/download"

// Downloader fetches and unpacks monthly list archives.
type Downloader struct {
	client  *http.Client
	baseURL string
	logger  logger.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) {
		if c != nil {
			d.client = c
		}
	}
}

// WithBaseURL sets the archive host.
func WithBaseURL(u string) DownloaderOption {
	return func(d *Downloader) {
		if u != "" {
			d.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithDownloadLogger sets the logger.
func WithDownloadLogger(l logger.Logger) DownloaderOption {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDownloader returns a downloader for the FIDE archive host.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client:  &http.Client{Timeout: 2 * time.Minute},
		baseURL: DefaultBaseURL,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch downloads the archive of the month code into dir, extracts the list
// and removes the archive. It returns the path of the extracted text file.
func (d *Downloader) Fetch(ctx context.Context, code, dir string) (string, error) {
	if _, err := ParseMonthCode(code); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	url := d.baseURL + "/" + ArchiveFileName(code)
	zipPath := filepath.Join(dir, ArchiveFileName(code))
	start := time.Now()
	if err := d.download(ctx, url, zipPath); err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(zipPath) }()

	out := filepath.Join(dir, ListFileName(code))
	if err := extractList(zipPath, out); err != nil {
		return "", err
	}
	d.logger.Info(ctx, "rating list downloaded",
		logger.String("code", code), logger.String("path", out), logger.Duration("took", time.Since(start)))
	return out, nil
}

func (d *Downloader) download(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrDownload, url, resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return f.Close()
}

// extractList copies the first .txt member of the archive to dst.
func extractList(zipPath, dst string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".txt") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer func() { _ = rc.Close() }()

		out, err := os.Create(dst)
		if err != nil {
			return fmt.Errorf("create %s: %w", dst, err)
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
		return out.Close()
	}
	return ErrArchive
}
