package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/oschwald/maxminddb-golang"

	"github.com/TomasB/geolookup/pkg/geoip/database"
	"github.com/TomasB/geolookup/pkg/geoip/models"
)

// ErrNotLoaded is returned by lookups on a closed MmdbReader.
var ErrNotLoaded = errors.New("MMDB database is not loaded")

// MmdbReader implements GeoLookup on top of an MMDB file that can be replaced while the
// service runs. Lookups keep working during a reload.
type MmdbReader struct {
	path   string
	opts   []database.Option
	logger *slog.Logger

	// OnReload, when set, is called after every reload attempt.
	OnReload func(metadata maxminddb.Metadata, err error)

	mu sync.RWMutex
	db *database.Reader
}

// NewMmdbReader opens the MMDB file at the given path and returns a reader.
func NewMmdbReader(path string, logger *slog.Logger, opts ...database.Option) (*MmdbReader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := database.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	return &MmdbReader{
		path:   path,
		opts:   opts,
		logger: logger,
		db:     db,
	}, nil
}

// Lookup implements GeoLookup.
func (r *MmdbReader) Lookup(kind database.Kind, ip string) (models.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return nil, ErrNotLoaded
	}
	return r.db.Lookup(kind, ip)
}

// Metadata implements GeoLookup.
func (r *MmdbReader) Metadata() maxminddb.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return maxminddb.Metadata{}
	}
	return r.db.Metadata()
}

// Ready reports whether a database is loaded.
func (r *MmdbReader) Ready() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return ErrNotLoaded
	}
	return nil
}

// Reload opens the file again and swaps it in. On failure the current database is kept.
func (r *MmdbReader) Reload() error {
	db, err := database.Open(r.path, r.opts...)
	if err != nil {
		r.notify(maxminddb.Metadata{}, err)
		return fmt.Errorf("reloading %s: %w", r.path, err)
	}

	r.mu.Lock()
	old := r.db
	r.db = db
	r.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			r.logger.Warn("failed to close previous MMDB", "path", r.path, "error", err)
		}
	}

	metadata := db.Metadata()
	r.logger.Info("MMDB reloaded",
		"path", r.path,
		"database_type", metadata.DatabaseType,
		"build_epoch", metadata.BuildEpoch,
	)
	r.notify(metadata, nil)
	return nil
}

func (r *MmdbReader) notify(metadata maxminddb.Metadata, err error) {
	if r.OnReload != nil {
		r.OnReload(metadata, err)
	}
}

// Watch reloads the database whenever the file is written or replaced, until ctx is done.
// The parent directory is watched so that atomic renames are seen.
func (r *MmdbReader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.path, err)
	}

	target := filepath.Clean(r.path)
	r.logger.Info("watching MMDB for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			r.logger.Debug("MMDB changed", "path", target, "op", event.Op.String())
			if err := r.Reload(); err != nil {
				r.logger.Error("failed to reload MMDB", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("MMDB watcher error", "error", err)
		}
	}
}

// Close releases the MMDB reader resources.
func (r *MmdbReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}
