package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"coursetheme/locale"
	"coursetheme/render"
	"coursetheme/store"
	"coursetheme/theme"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

// OpenStore opens host database and theme on top of it, subsequent calls do
// nothing.
func (e *LocalEnv) OpenStore(ctx context.Context) error {
	if e.Store != nil {
		return nil
	}
	if e.Cfg == nil {
		return errors.New("configuration is not loaded")
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	db, err := store.Open(ctx, &e.Cfg.Database, log)
	if err != nil {
		return err
	}
	e.Store = db
	e.Theme = theme.New(e.Cfg, db, log)
	return nil
}

// CloseStore closes host database if it was opened.
func (e *LocalEnv) CloseStore() error {
	if e.Store == nil {
		return nil
	}
	err := e.Store.Close()
	e.Store, e.Theme = nil, nil
	if err != nil {
		return fmt.Errorf("unable to close database: %w", err)
	}
	return nil
}

// NewRenderer creates course renderer for a single page backed by host
// database. lang overrides configured interface language when not empty.
func (e *LocalEnv) NewRenderer(page *render.Page, lang string) (*render.CourseRenderer, error) {
	if e.Store == nil {
		return nil, errors.New("database is not opened")
	}
	urls, err := render.NewURLs(e.Cfg.Theme.WWWRoot, e.Cfg.Theme.SiteID)
	if err != nil {
		return nil, err
	}
	if len(lang) == 0 {
		lang = e.Cfg.Theme.Lang
	}
	return render.New(
		render.NewSettings(e.Cfg),
		render.Lookups{Ratings: e.Store, Authors: e.Store},
		locale.New(lang),
		urls,
		page,
		e.Log,
	)
}
