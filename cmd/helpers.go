package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognize"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// buildStore picks the attendance store backend from configuration.
// Firebase RTDB wins when STORE_URL is set, then the MySQL backend.
func buildStore(cfg *config.Config) (store.Store, error) {
	if cfg.Store.URL != "" {
		st, err := store.NewRTDB(cfg.Store.URL, cfg.Store.Auth, cfg.Store.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create RTDB store: %w", err)
		}
		return st, nil
	}
	if cfg.Store.MySQLDSN != "" {
		st, err := store.NewMySQL(cfg.Store.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL store: %w", err)
		}
		return st, nil
	}
	return nil, errors.New("no store configured, set STORE_URL or STORE_MYSQL_DSN")
}

// loadGalleryEntries loads enrolled faces from PostgreSQL when DATABASE_URL
// is set, otherwise from the gob gallery file.
func loadGalleryEntries(ctx context.Context, cfg *config.Config) ([]gallery.Entry, error) {
	if cfg.Gallery.DatabaseURL != "" {
		repo, err := gallery.NewPostgresRepository(&cfg.Gallery, cfg.Detector.Dim)
		if err != nil {
			return nil, fmt.Errorf("failed to open gallery database: %w", err)
		}
		defer repo.Close()
		return repo.List(ctx)
	}
	return gallery.LoadFile(cfg.Gallery.Path)
}

// buildRecognizer assembles the detector client and gallery matcher.
func buildRecognizer(ctx context.Context, cfg *config.Config) (*recognize.Recognizer, error) {
	entries, err := loadGalleryEntries(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}

	matcher := recognize.NewMatcher(cfg.Gallery.DistanceThreshold)
	if err := matcher.BuildFromGallery(entries); err != nil {
		return nil, fmt.Errorf("failed to build gallery index: %w", err)
	}
	fmt.Printf("Gallery index built with %d enrolled faces\n", matcher.Count())

	detector := recognize.NewDetector(cfg.Detector.URL)
	return recognize.NewRecognizer(detector, matcher), nil
}

// parseMonthArg parses an English month name argument ("March", "march").
func parseMonthArg(s string) (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid month name %q, expected an English month name like March", s)
}
