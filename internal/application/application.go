package application

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/eugenenazirov/fitness-tracker/internal/api"
	"github.com/eugenenazirov/fitness-tracker/internal/config"
	"github.com/eugenenazirov/fitness-tracker/internal/report"
	"github.com/eugenenazirov/fitness-tracker/internal/workout"
)

// EntryError describes a package of a batch that could not be reported.
type EntryError struct {
	Index int
	Code  workout.Code
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("package %d (%s): %v", e.Index, e.Code, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// RunBatch writes one report line per package to out. Packages that fail to
// parse are logged and skipped; their errors are combined in the returned error.
func RunBatch(out io.Writer, pkgs []workout.Package, logger *zap.Logger) error {
	var errs error
	for i, pkg := range pkgs {
		w, err := workout.Read(pkg)
		if err != nil {
			logger.Warn("skipping workout package",
				zap.Int("index", i),
				zap.String("code", string(pkg.Code)),
				zap.Error(err),
			)
			errs = multierr.Append(errs, &EntryError{Index: i, Code: pkg.Code, Err: err})
			continue
		}

		msg := report.Summarize(w)
		if _, err := fmt.Fprintln(out, msg.String()); err != nil {
			return multierr.Append(errs, fmt.Errorf("write report: %w", err))
		}
		logger.Debug("workout reported",
			zap.Int("index", i),
			zap.String("training_type", msg.TrainingType),
			zap.Float64("calories", msg.Calories),
		)
	}
	return errs
}

// App encapsulates the HTTP serving dependencies.
type App struct {
	router http.Handler
	logger *zap.Logger
	server *http.Server
}

// New wires the workout API and HTTP server from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	router := api.NewRouter(api.NewHandler(), logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		router: router,
		logger: logger,
		server: NewServer(cfg, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
