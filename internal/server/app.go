// Package server initializes and runs the main application server.
// It wires the database, object storage, access engine and HTTP routes,
// runs schema migrations on startup and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/workhive/filegate/internal/access"
	"github.com/workhive/filegate/internal/blobstore"
	"github.com/workhive/filegate/internal/config"
	"github.com/workhive/filegate/internal/httpapi"
	"github.com/workhive/filegate/internal/logging"
	"github.com/workhive/filegate/internal/repositories/repomanager"
	"github.com/workhive/filegate/internal/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	store := blobstore.NewS3Store(c)

	engine := access.NewEngine(rm.Policies(db),
		access.NewEmployerApplicantResume(rm.Applications(db)))

	objects := services.NewObjectService(db, rm, store, engine, c, logger)

	router := httpapi.NewRouter(c, httpapi.NewHandler(objects, logger), db, logger)
	httpServer := httpapi.NewServer(c.EndpointAddrHTTP, router, c.ShutdownTimeout, logger)

	return &App{config: c, logger: logger, db: db, repomanager: rm, httpServer: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	return nil
}
