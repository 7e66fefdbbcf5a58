package catalog

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"prophet-bnb/config"
	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// DownloadError reports that a required snapshot file could not be
// retrieved.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed (%s): %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// SnapshotCache resolves version descriptors to local files, downloading
// and decompressing archives on demand. Cached files live for the process
// lifetime and beyond; the cache never deletes its own entries. All writes
// are idempotent (same URL, same bytes), so duplicate downloads are
// wasteful but never unsafe.
type SnapshotCache struct {
	dir      string
	client   *http.Client
	logger   *utils.Logger
	retry    *utils.RetryConfig
	inflight *utils.KeyedMutex

	maxConcurrency int
	rateLimitMs    int
}

// NewSnapshotCache creates a SnapshotCache rooted at the configured
// cache directory.
func NewSnapshotCache(cfg *config.Config, logger *utils.Logger) *SnapshotCache {
	return &SnapshotCache{
		dir:    cfg.CacheDir,
		client: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Logger:      logger,
		},
		inflight:       utils.NewKeyedMutex(),
		maxConcurrency: cfg.MaxConcurrency,
		rateLimitMs:    cfg.RateLimitMs,
	}
}

// Resolve returns local paths for the snapshot's files, fetching on cache
// miss. force re-fetches everything; urlOverride always fetches the
// listings file from the given URL, bypassing the cache, while reviews and
// neighbourhoods still come from the version's own URLs. A missing
// optional file is absent from the result, not an error.
func (c *SnapshotCache) Resolve(version models.VersionDescriptor, city, date string, force bool, urlOverride string) (models.CachedFiles, error) {
	unlock := c.inflight.Lock(city + "/" + date)
	defer unlock()

	entryDir := filepath.Join(c.dir, city, date)
	if err := os.MkdirAll(entryDir, 0o755); err != nil {
		return models.CachedFiles{}, fmt.Errorf("cache: create dir %q: %w", entryDir, err)
	}

	var files models.CachedFiles

	if urlOverride != "" {
		// Overrides never touch the cached copy.
		path := filepath.Join(entryDir, "listings_override.csv")
		if err := c.fetchFile(urlOverride, path); err != nil {
			return models.CachedFiles{}, &DownloadError{URL: urlOverride, Err: err}
		}
		files.Listings = path
	} else {
		path := filepath.Join(entryDir, "listings.csv")
		if err := c.ensureFile(version.ListingsURL, path, force); err != nil {
			return models.CachedFiles{}, &DownloadError{URL: version.ListingsURL, Err: err}
		}
		files.Listings = path
	}

	// Optional files download in parallel, rate-limited like any other
	// outbound traffic.
	workers := c.maxConcurrency
	if workers < 1 {
		workers = 1
	}
	pool := utils.NewWorkerPool(workers, c.rateLimitMs)
	pool.Submit(func() {
		files.Reviews = c.ensureOptional(version.ReviewsURL, filepath.Join(entryDir, "reviews.csv"), force)
	})
	pool.Submit(func() {
		files.Neighbourhoods = c.ensureOptional(version.NeighbourhoodsURL, filepath.Join(entryDir, "neighbourhoods.csv"), force)
	})
	pool.Wait()

	return files, nil
}

// ensureOptional fetches an optional file and returns its path, or "" when
// the file has no URL or the fetch fails.
func (c *SnapshotCache) ensureOptional(url, path string, force bool) string {
	if url == "" {
		return ""
	}
	if err := c.ensureFile(url, path, force); err != nil {
		c.logger.Warn("[cache] Optional file unavailable (%s): %v", url, err)
		return ""
	}
	return path
}

// ensureFile makes path present and non-empty, fetching from url when the
// cached copy is missing, empty, or force is set.
func (c *SnapshotCache) ensureFile(url, path string, force bool) error {
	if url == "" {
		return fmt.Errorf("no URL for %s", filepath.Base(path))
	}
	if !force && fileNonEmpty(path) {
		c.logger.Debug("[cache] Hit: %s", path)
		return nil
	}
	return c.fetchFile(url, path)
}

// fetchFile downloads url to path, decompressing gzip transparently. The
// download goes to a temp file first and is renamed into place so a
// partial download never looks like a cache hit.
func (c *SnapshotCache) fetchFile(url, path string) error {
	return c.retry.Do("download "+filepath.Base(path), func() error {
		resp, err := c.client.Get(url)
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		body, err := decompressed(resp.Body)
		if err != nil {
			return err
		}

		tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
		if err != nil {
			return fmt.Errorf("temp file: %w", err)
		}
		defer os.Remove(tmp.Name())

		n, err := io.Copy(tmp, body)
		if closeErr := tmp.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("empty response body")
		}

		if err := os.Rename(tmp.Name(), path); err != nil {
			return fmt.Errorf("rename: %w", err)
		}

		c.logger.Info("[cache] Fetched %s (%d bytes) → %s", url, n, path)
		return nil
	})
}

// decompressed wraps r in a gzip reader when the stream carries the gzip
// magic bytes, and returns it untouched otherwise.
func decompressed(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		// Short or empty body; let the copy surface it.
		return br, nil
	}
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, nil
	}
	return br, nil
}

func fileNonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
