package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/config"
	"github.com/Veraticus/sorting-hat/internal/raster"
	"github.com/Veraticus/sorting-hat/internal/session"
	"github.com/Veraticus/sorting-hat/internal/storage"
)

// initStorage opens the history database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(settings.DatabasePath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newSession builds a session from the loaded settings.
func newSession(opts ...session.Option) (*session.Session, error) {
	interp, err := raster.InterpolatorByName(settings.Interpolator)
	if err != nil {
		return nil, err
	}

	base := []session.Option{
		session.WithRevealDelay(settings.RevealDelay),
		session.WithDefaultCropSize(settings.CropSize),
		session.WithInterpolator(interp),
	}
	return session.New(append(base, opts...)...), nil
}

// newSuggester builds a crop suggester, with face detection when a cascade is configured.
func newSuggester() (*raster.Suggester, error) {
	if settings.FaceCascade == "" {
		return raster.NewSuggester(nil)
	}

	cascade, err := os.ReadFile(filepath.Clean(settings.FaceCascade))
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("Cannot read face cascade %s", settings.FaceCascade), err)
	}
	return raster.NewSuggester(cascade)
}

// readImage reads an image file named on the command line.
func readImage(path string) ([]byte, error) {
	path = config.ExpandPath(path)
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- user-provided image path
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Cannot open %s", path), err)
	}
	return data, nil
}
