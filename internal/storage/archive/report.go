// internal/storage/archive/report.go
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/fundrep/internal/core"
)

const (
	reportsRoot = "reports"
	keyTime     = "20060102T150405Z"
)

// Entry describes one archived report
type Entry struct {
	Key       string
	ISIN      string
	Variant   string
	CreatedAt time.Time
}

// ReportKey returns reports/<isin>/<variant>/<UTC timestamp>.html
func ReportKey(isin, variant string, t time.Time) string {
	return path.Join(reportsRoot, isin, variant, t.UTC().Format(keyTime)+".html")
}

// ParseReportKey is the inverse of ReportKey
func ParseReportKey(key string) (Entry, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != reportsRoot || !strings.HasSuffix(parts[3], ".html") {
		return Entry{}, fmt.Errorf("not a report key: %q", key)
	}
	created, err := time.Parse(keyTime, strings.TrimSuffix(parts[3], ".html"))
	if err != nil {
		return Entry{}, fmt.Errorf("report key %q: %w", key, err)
	}
	return Entry{Key: key, ISIN: parts[1], Variant: parts[2], CreatedAt: created}, nil
}

// Recorder receives one observation per archive write
type Recorder interface {
	RecordArchive(backend string, err error)
}

// Archive stores rendered report pages in a Storage backend
type Archive struct {
	store    Storage
	backend  string
	recorder Recorder
	now      func() time.Time
}

// NewArchive wraps store. backend names the store in metrics.
func NewArchive(store Storage, backend string) *Archive {
	return &Archive{store: store, backend: backend, now: time.Now}
}

// SetRecorder sets the metrics recorder
func (a *Archive) SetRecorder(r Recorder) {
	a.recorder = r
}

// Backend returns the backend name
func (a *Archive) Backend() string {
	return a.backend
}

// Store writes one rendered page and returns its key. An existing report
// with the same key is never overwritten.
func (a *Archive) Store(ctx context.Context, isin, variant string, page []byte) (string, error) {
	key := ReportKey(isin, variant, a.now())

	err := a.write(ctx, key, page)
	if a.recorder != nil {
		a.recorder.RecordArchive(a.backend, err)
	}
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	return key, nil
}

func (a *Archive) write(ctx context.Context, key string, page []byte) error {
	err := a.store.Create(ctx, key, page)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("report %s already archived: %w", key, err)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// List returns archived reports, newest first. An empty isin lists every
// fund.
func (a *Archive) List(ctx context.Context, isin string) ([]Entry, error) {
	prefix := reportsRoot
	if isin != "" {
		prefix = path.Join(reportsRoot, isin)
	}

	keys, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("listing %s: %w", prefix, err))
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		e, err := ParseReportKey(key)
		if err != nil {
			// foreign objects under the same prefix
			continue
		}
		if isin != "" && e.ISIN != isin {
			continue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}

// Get returns the archived page stored under key. Malformed or unknown keys
// fail with ErrReportNotFound, storage failures with ErrArchiveFailed.
func (a *Archive) Get(ctx context.Context, key string) ([]byte, error) {
	if _, err := ParseReportKey(key); err != nil {
		return nil, core.WrapError(core.ErrReportNotFound, err)
	}
	data, err := a.store.Read(ctx, key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.WrapError(core.ErrReportNotFound, fmt.Errorf("reading %s: %w", key, err))
	}
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("reading %s: %w", key, err))
	}
	return data, nil
}

// Prune keeps the newest keep reports per (isin, variant) and deletes the
// rest. It returns the deleted keys.
func (a *Archive) Prune(ctx context.Context, isin string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}

	entries, err := a.List(ctx, isin)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	var deleted []string
	for _, e := range entries {
		group := e.ISIN + "/" + e.Variant
		seen[group]++
		if seen[group] <= keep {
			continue
		}
		if err := a.store.Delete(ctx, e.Key); err != nil {
			return deleted, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("deleting %s: %w", e.Key, err))
		}
		deleted = append(deleted, e.Key)
	}
	return deleted, nil
}
