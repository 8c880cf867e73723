package api

import (
	"time"

	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Store() storage.Store
	Now() time.Time
	Location() *time.Location
}

type app struct {
	logger internal.Logger
	store  storage.Store
	loc    *time.Location
	now    func() time.Time
}

func NewApp(logger internal.Logger, store storage.Store, loc *time.Location) App {
	return &app{logger: logger, store: store, loc: loc, now: time.Now}
}

// NewAppWithClock pins the clock; streak tests depend on a fixed "today".
func NewAppWithClock(logger internal.Logger, store storage.Store, loc *time.Location, now func() time.Time) App {
	return &app{logger: logger, store: store, loc: loc, now: now}
}

func (a *app) Logger() internal.Logger   { return a.logger }
func (a *app) Store() storage.Store     { return a.store }
func (a *app) Now() time.Time           { return a.now() }
func (a *app) Location() *time.Location { return a.loc }
