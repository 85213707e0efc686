package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"finrag/config"
	"finrag/internal/logger"
)

const settingFingerprint = "index_fingerprint"

// Migrate records the index fingerprint of cfg, dropping a persisted index
// that was built under a different one.
func (s *Store) Migrate(cfg *config.Config) error {
	fingerprint := cfg.IndexFingerprint()

	var stored string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, settingFingerprint).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("reading index fingerprint: %w", err)
	case stored != fingerprint:
		logger.Info("dropping persisted index: index configuration changed")
		if err := s.DeleteIndex(); err != nil {
			return fmt.Errorf("dropping stale index: %w", err)
		}
	}

	_, err = s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, settingFingerprint, fingerprint)
	return err
}
