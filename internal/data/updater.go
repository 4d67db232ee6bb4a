package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/maxmind/geoipupdate/v4/pkg/geoipupdate"
	geoipdb "github.com/maxmind/geoipupdate/v4/pkg/geoipupdate/database"

	"github.com/TomasB/geolookup/internal/config"
)

// Updater downloads a database edition from MaxMind into a local file.
type Updater struct {
	config  *geoipupdate.Config
	edition string
	path    string
	logger  *slog.Logger

	// fetch is replaced in tests.
	fetch func() error
}

// NewUpdater returns an updater writing cfg.EditionID to path.
func NewUpdater(cfg config.Update, path string, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	u := &Updater{
		config: &geoipupdate.Config{
			AccountID:         cfg.AccountID,
			LicenseKey:        cfg.LicenseKey,
			DatabaseDirectory: filepath.Dir(path),
			EditionIDs:        []string{cfg.EditionID},
			LockFile:          path + ".lock",
			URL:               cfg.URL,
		},
		edition: cfg.EditionID,
		path:    path,
		logger:  logger.With("edition", cfg.EditionID),
	}
	u.fetch = u.download
	return u
}

func (u *Updater) download() error {
	client := geoipupdate.NewClient(u.config)
	reader := geoipdb.NewHTTPDatabaseReader(client, u.config)

	w, err := geoipdb.NewLocalFileDatabaseWriter(u.path, u.config.LockFile, u.config.Verbose)
	if err != nil {
		return err
	}

	if err := reader.Get(w, u.edition); err != nil {
		return fmt.Errorf("updating database at %s: %w", u.path, err)
	}
	return nil
}

// Update downloads the edition if MaxMind has a newer build than the local file.
func (u *Updater) Update() error {
	start := time.Now()
	if err := u.fetch(); err != nil {
		return err
	}
	u.logger.Info("database update finished", "path", u.path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// EnsureExists downloads the edition when the local file is missing.
func (u *Updater) EnsureExists() error {
	_, err := os.Stat(u.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := u.Update(); err != nil {
		return fmt.Errorf("no existing database at %s and update failed: %w", u.path, err)
	}
	return nil
}

// Run updates the edition every interval until ctx is done, calling onUpdate after each
// successful download. Failed updates are logged and retried on the next tick.
func (u *Updater) Run(ctx context.Context, interval time.Duration, onUpdate func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	u.logger.Debug("automatic updates enabled", "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := u.Update(); err != nil {
				u.logger.Warn("failed to update database", "error", err)
				continue
			}
			if onUpdate != nil {
				if err := onUpdate(); err != nil {
					u.logger.Error("failed to apply database update", "error", err)
				}
			}
		}
	}
}
