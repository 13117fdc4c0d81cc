package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cryptoquote/internal/availability"
	"cryptoquote/internal/config"
	"cryptoquote/internal/controller"
	"cryptoquote/internal/fields"
	"cryptoquote/internal/provider"
	"cryptoquote/internal/quote"
	"cryptoquote/internal/session"
	"cryptoquote/internal/submission"
	"cryptoquote/internal/validation"
	"cryptoquote/internal/worker"
)

const feedName = "coincap"

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg            *config.Config
	logger         *zap.SugaredLogger
	rdbCache       *redis.Client
	rdbAsynq       *redis.Client
	asynqClient    *asynq.Client
	asynqServer    *asynq.Server
	asynqScheduler *asynq.Scheduler
	asynqMux       *asynq.ServeMux
	httpServer     *http.Server

	rules     controller.Rules
	feed      provider.RateFeed
	cached    *provider.CachedRateFeed
	directory provider.CountryDirectory
	refresh   controller.RefreshEnqueuer
	store     *session.Store

	// sessionCtx outlives requests; canceled on shutdown
	sessionCtx    context.Context
	cancelSession context.CancelFunc
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}
	app.sessionCtx, app.cancelSession = context.WithCancel(context.Background())

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases Redis connections
func (app *App) close() error {
	var errs []error
	app.cancelSession()
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	if app.cfg.Redis.CacheAddr == "" {
		app.logger.Warnw("Rate cache disabled, every session fetches the feed directly")
		return nil
	}

	app.rdbCache = redis.NewClient(&redis.Options{
		Addr: app.cfg.Redis.CacheAddr,
	})
	if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
	}
	app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)

	return nil
}

func (app *App) initServices() error {
	rules, err := newRules(app.cfg.Quote)
	if err != nil {
		return err
	}
	app.rules = rules

	app.feed, app.cached = newRateFeed(app.cfg, app.rdbCache)
	app.directory = provider.NewRegionDirectory()

	navigator := submission.NavigatorFunc(func(_ context.Context, target string) error {
		app.logger.Debugw("Redirect issued", "url_len", len(target))
		return nil
	})
	// app.refresh is set by initWorker and read per session
	factory := func(affiliateID string) *controller.Controller {
		return controller.New(controller.Config{
			Rules:       app.rules,
			References:  fields.DefaultReferences(),
			AffiliateID: affiliateID,
			Feed:        app.feed,
			Directory:   app.directory,
			Navigator:   navigator,
			Refresh:     app.refresh,
			BaseURL:     app.cfg.Server.RedirectBaseURL,
			Logger:      app.logger,
		})
	}
	app.store = session.NewStore(app.sessionCtx, factory, session.Limits{
		IdleTTL:   app.cfg.Session.IdleTTL(),
		MaxActive: app.cfg.Session.MaxActive,
	}, app.logger)

	if err := app.initWorker(); err != nil {
		return err
	}

	app.initHTTP()
	return nil
}

func (app *App) initWorker() error {
	if app.cfg.Redis.AsynqAddr == "" || app.rdbCache == nil {
		app.logger.Infow("Rate refresh worker disabled")
		return nil
	}

	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}
	timeout := time.Duration(app.cfg.Worker.TimeoutSec) * time.Second

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.refresh = worker.NewAsynqEnqueuer(app.asynqClient, feedName, app.cfg.Worker.MaxRetry, timeout)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: app.cfg.Worker.Concurrency,
			Logger:      app.logger,
		},
	)
	app.asynqScheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: app.logger,
	})

	entryID, err := worker.RegisterSchedule(app.asynqScheduler, app.cfg.Worker.RefreshCron, feedName,
		app.cfg.Worker.MaxRetry, timeout)
	if err != nil {
		return fmt.Errorf("register rate refresh schedule %q: %w", app.cfg.Worker.RefreshCron, err)
	}

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(worker.TaskTypeRefreshRates, worker.NewRefreshHandler(app.cached, app.logger))

	app.logger.Infow("Asynq configured",
		"addr", app.cfg.Redis.AsynqAddr,
		"cron", app.cfg.Worker.RefreshCron,
		"entry_id", entryID,
	)
	return nil
}

func newRules(cfg config.QuoteConfig) (controller.Rules, error) {
	markup, minFiat, maxFiat, err := cfg.Decimals()
	if err != nil {
		return controller.Rules{}, err
	}
	return controller.Rules{
		Policy:     availability.DefaultPolicy(),
		Engine:     validation.DefaultEngine(validation.Bounds{Min: minFiat, Max: maxFiat}),
		Calculator: quote.NewCalculator(markup),
	}, nil
}

// newRateFeed builds Instrumented(CoinCap) behind the Redis cache, with the
// optional mirror tried second. The cached feed is returned for the worker.
func newRateFeed(cfg *config.Config, cache *redis.Client) (provider.RateFeed, *provider.CachedRateFeed) {
	coincap := provider.NewInstrumentedFeed(
		provider.NewCoinCapFeed(cfg.CoinCap.BaseURL, cfg.CoinCap.APIKey, cfg.CoinCap.Timeout),
		feedName,
	)
	cached := provider.NewCachedRateFeed(coincap, cache, cfg.Cache.RatesTTL(), feedName)

	if cfg.CoinCap.FallbackBaseURL == "" {
		return cached, cached
	}

	mirror := provider.NewInstrumentedFeed(
		provider.NewCoinCapFeed(cfg.CoinCap.FallbackBaseURL, cfg.CoinCap.APIKey, cfg.CoinCap.Timeout),
		feedName+"_mirror",
	)
	return provider.NewFeedFacade(cached, mirror), cached
}

// Run starts the HTTP server, the session sweeper and the Asynq worker,
// blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if app.asynqServer != nil {
		g.Go(func() error {
			app.logger.Infow("Starting Asynq worker server")
			if err := app.asynqServer.Start(app.asynqMux); err != nil {
				return fmt.Errorf("asynq worker failed to start: %w", err)
			}
			if err := app.asynqScheduler.Start(); err != nil {
				return fmt.Errorf("asynq scheduler failed to start: %w", err)
			}

			<-ctx.Done()
			return nil
		})
	}

	g.Go(func() error {
		return app.store.Run(ctx, app.cfg.Session.SweepInterval())
	})

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server, scheduler, Asynq worker,
// then connections.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if app.asynqScheduler != nil {
		app.asynqScheduler.Shutdown()
	}
	if app.asynqServer != nil {
		app.asynqServer.Shutdown()
	}

	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete", "sessions", app.store.Len())
	return errors.Join(errs...)
}
