package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/resonance/internal/config"
	"github.com/llehouerou/resonance/internal/errmsg"
	"github.com/llehouerou/resonance/internal/lastfm"
	"github.com/llehouerou/resonance/internal/library"
	"github.com/llehouerou/resonance/internal/logging"
	"github.com/llehouerou/resonance/internal/recommend"
	"github.com/llehouerou/resonance/internal/state"
	"github.com/llehouerou/resonance/internal/suggest"
)

// app holds what every command needs.
type app struct {
	cfg      *config.Config
	state    *state.Manager
	lib      *library.Library
	logger   *log.Logger
	closeLog func() error
}

func fail(op errmsg.Op, target string, err error) error {
	return errmsg.New(op, target, err)
}

func openApp(dbPath, logLevel string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fail(errmsg.OpConfigLoad, "", err)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, fail(errmsg.OpConfigLoad, "", err)
	}

	a := &app{cfg: cfg}
	if cfg.LogDir != "" {
		a.logger, a.closeLog, err = logging.OpenFile(cfg.LogDir, level)
		if err != nil {
			return nil, fail(errmsg.OpLogOpen, cfg.LogDir, err)
		}
	} else {
		a.logger = logging.New(os.Stderr, level)
	}

	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath != "" {
		a.state, err = state.OpenPath(dbPath)
	} else {
		a.state, err = state.Open()
	}
	if err != nil {
		a.Close()
		return nil, fail(errmsg.OpDatabaseOpen, dbPath, err)
	}

	a.lib = library.New(a.state.DB())
	if err := a.lib.SeedSources(cfg.LibrarySources); err != nil {
		a.Close()
		return nil, fail(errmsg.OpSourceLoad, "", err)
	}
	return a, nil
}

func (a *app) Close() {
	if a.state != nil {
		if err := a.state.Close(); err != nil {
			a.logger.Warn("close database", "err", err)
		}
		a.state = nil
	}
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

// newEngine builds an engine, backed by Last.fm when hybrid is set and
// credentials are configured.
func (a *app) newEngine(hybrid bool) *recommend.Engine {
	engine := recommend.NewEngine(nil, nil, a.logger)
	if !hybrid {
		return engine
	}
	if !a.cfg.HasLastfmConfig() {
		a.logger.Warn("hybrid mode needs Last.fm credentials, using local recommendations")
		return engine
	}

	rc := a.cfg.GetRecommendConfig()
	src := suggest.New(
		lastfm.New(a.cfg.Lastfm.APIKey, a.cfg.Lastfm.APISecret),
		suggest.NewCache(a.state.DB(), rc.CacheTTLDays),
		a.lib,
		suggest.Options{
			SimilarArtists: rc.SimilarArtists,
			MatchThreshold: rc.ArtistMatchThreshold,
		},
		a.logger,
	)
	engine.SetFetcher(withTimeout(src, time.Duration(rc.FetchTimeoutSeconds)*time.Second))
	return engine
}

// withTimeout bounds every fetch of f by d.
func withTimeout(f recommend.Fetcher, d time.Duration) recommend.Fetcher {
	return recommend.FetcherFunc(func(ctx context.Context, req recommend.Request) ([]recommend.Suggestion, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return f.Fetch(ctx, req)
	})
}
