package mediafetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go-whatscv-backend/internal/domain"
)

// MediaResolver is the two-step provider capability: exchange an opaque
// media id for a transient URL, then stream the binary.
type MediaResolver interface {
	ResolveMediaURL(ctx context.Context, mediaID string) (string, error)
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Fetcher retrieves provider attachments onto the local scratch directory.
// It implements domain.MediaFetcher. Callers own the destination file and
// must remove it on every exit path, success or failure.
type Fetcher struct {
	resolver   MediaResolver
	httpClient *http.Client
}

func NewFetcher(resolver MediaResolver) *Fetcher {
	return &Fetcher{
		resolver: resolver,
		// Redirects are followed by default; signed media URLs redirect
		// to CDN hosts.
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchURL performs a single GET against a ready-to-use (signed) URL and
// writes the body to dest. Any transport error or non-2xx response fails
// with domain.MediaUnavailableError.
func (f *Fetcher) FetchURL(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.MediaUnavailableError{Reason: "invalid media url", Err: err}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return &domain.MediaUnavailableError{Reason: "media fetch failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.MediaUnavailableError{
			Reason: fmt.Sprintf("media fetch returned http %d", resp.StatusCode),
		}
	}

	return writeToFile(resp.Body, dest)
}

// FetchMediaID resolves an opaque media id through the provider metadata
// endpoint and then fetches the binary. Configuration errors from the
// resolver (missing bearer credential) pass through unchanged so callers
// can tell misconfiguration apart from provider failures.
func (f *Fetcher) FetchMediaID(ctx context.Context, mediaID, dest string) error {
	url, err := f.resolver.ResolveMediaURL(ctx, mediaID)
	if err != nil {
		return err
	}

	body, err := f.resolver.Download(ctx, url)
	if err != nil {
		return &domain.MediaUnavailableError{Reason: "media download failed", Err: err}
	}
	defer body.Close()

	return writeToFile(body, dest)
}

func writeToFile(r io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &domain.MediaUnavailableError{Reason: "scratch dir unavailable", Err: err}
	}

	out, err := os.Create(dest)
	if err != nil {
		return &domain.MediaUnavailableError{Reason: "scratch file create failed", Err: err}
	}

	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return &domain.MediaUnavailableError{Reason: "scratch file write failed", Err: err}
	}
	return out.Close()
}
