package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptoquote/internal/api"
	"cryptoquote/internal/api/middleware"
)

const asynqmonPath = "/monitoring"

func (app *App) initHTTP() {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Post("/sessions", api.HandleCreateSession(app.store))
	r.Get("/sessions/{id}", api.HandleGetSession(app.store))
	r.Delete("/sessions/{id}", api.HandleDeleteSession(app.store))
	r.Patch("/sessions/{id}/fields", api.HandleSetField(app.store))
	r.Post("/sessions/{id}/submit", api.HandleSubmit(app.store))
	r.Get("/quote", api.HandleGetQuote(app.feed, app.rules.Calculator, app.logger))
	r.Get("/countries", api.HandleListCountries(app.directory))
	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.rdbCache, app.rdbAsynq))
	r.Handle("/metrics", promhttp.Handler())

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	if app.cfg.Server.ServeAsynqmon && app.cfg.Redis.AsynqAddr != "" {
		mon := asynqmon.New(asynqmon.Options{
			RootPath:     asynqmonPath,
			RedisConnOpt: asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr},
		})
		r.Handle(asynqmonPath+"/*", mon)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
