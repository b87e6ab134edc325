package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ensenando/signcoach/internal/confirm"
)

// Setting keys understood by the recognizer.
const (
	KeyConfidenceThreshold = "recognition.confidence_threshold"
	KeyRequiredConsecutive = "recognition.required_consecutive"
)

// SettingsRepository stores key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// All returns every stored setting.
func (r *SettingsRepository) All() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

// Recognition applies stored recognition overrides on top of base.
func (r *SettingsRepository) Recognition(base confirm.Config) (confirm.Config, error) {
	cfg := base

	v, err := r.Get(KeyConfidenceThreshold)
	switch {
	case err == nil:
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return base, fmt.Errorf("parse %s: %w", KeyConfidenceThreshold, err)
		}
		cfg.ConfidenceThreshold = float32(f)
	case !errors.Is(err, ErrNotFound):
		return base, err
	}

	v, err = r.Get(KeyRequiredConsecutive)
	switch {
	case err == nil:
		n, err := strconv.Atoi(v)
		if err != nil {
			return base, fmt.Errorf("parse %s: %w", KeyRequiredConsecutive, err)
		}
		cfg.RequiredConsecutive = n
	case !errors.Is(err, ErrNotFound):
		return base, err
	}

	return cfg, nil
}

// SetRecognition stores cfg as the recognition overrides.
func (r *SettingsRepository) SetRecognition(cfg confirm.Config) error {
	if err := r.Set(KeyConfidenceThreshold, strconv.FormatFloat(float64(cfg.ConfidenceThreshold), 'f', -1, 32)); err != nil {
		return err
	}
	return r.Set(KeyRequiredConsecutive, strconv.Itoa(cfg.RequiredConsecutive))
}
