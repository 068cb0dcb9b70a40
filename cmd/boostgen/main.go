package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voltlab/boostgen/internal/catalog"
	"github.com/voltlab/boostgen/internal/config"
	"github.com/voltlab/boostgen/internal/design"
	apperrors "github.com/voltlab/boostgen/internal/errors"
	"github.com/voltlab/boostgen/internal/logging"
	"github.com/voltlab/boostgen/internal/server"
	"github.com/voltlab/boostgen/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize base logger
	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	serviceLogger := logger.WithFields(map[string]interface{}{
		"service": "boostgen",
	})

	spec, err := design.LoadSpec(cfg.Design.SpecPath)
	if err != nil {
		serviceLogger.Fatal("Failed to load design spec", map[string]interface{}{"error": err})
	}

	catalogs, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		serviceLogger.Fatal("Failed to load part catalogs", map[string]interface{}{"error": err})
	}
	serviceLogger.Info("Catalogs loaded", map[string]interface{}{
		"switches":   len(catalogs.Switches),
		"capacitors": len(catalogs.Capacitors),
		"inductors":  len(catalogs.Inductors),
	})

	st := store.New(cfg.Design.OutputDir)

	opts := design.Options{
		MaxIterations: cfg.Design.MaxIterations,
		MaxFrequency:  cfg.Design.MaxFrequency,
		Store:         st,
		Logger:        serviceLogger,
	}
	if cfg.Monitor.Enabled {
		opts.Recorder = server.NewMetrics(prometheus.DefaultRegisterer)
	}

	opt, err := design.New(*spec, catalogs, opts)
	if err != nil {
		serviceLogger.Fatal("Failed to build optimizer", map[string]interface{}{"error": err})
	}

	// Cancel the search on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var monitor *http.Server
	if cfg.Monitor.Enabled {
		monitor = startMonitor(cfg, opt, logger, serviceLogger)
	}

	state, err := opt.Run(ctx)
	switch {
	case err == nil:
		report(serviceLogger, st, state)
	case errors.Is(err, context.Canceled):
		serviceLogger.Warn("Design search interrupted", map[string]interface{}{
			"state_file": st.Path(),
		})
	default:
		serviceLogger.Error("Design search failed", map[string]interface{}{"error": err})
	}

	if monitor != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Monitor.ShutdownTimeout)
		defer cancel()
		if serr := monitor.Shutdown(shutdownCtx); serr != nil {
			serviceLogger.Warn("Monitor shutdown failed", map[string]interface{}{"error": serr})
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

// startMonitor serves the read-only design monitor in the background.
func startMonitor(cfg *config.Config, opt *design.Optimizer, logger, serviceLogger *logging.Logger) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(apperrors.RecoveryMiddleware(serviceLogger))
	r.Use(apperrors.ErrorHandler(serviceLogger))
	r.Use(middleware.Timeout(cfg.Monitor.ReadTimeout))

	server.NewServer(opt, serviceLogger).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Monitor.Port),
		Handler:      r,
		ReadTimeout:  cfg.Monitor.ReadTimeout,
		WriteTimeout: cfg.Monitor.WriteTimeout,
		IdleTimeout:  cfg.Monitor.IdleTimeout,
	}

	go func() {
		serviceLogger.Info("Monitor listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serviceLogger.Error("Monitor server failed", map[string]interface{}{"error": err})
		}
	}()

	return srv
}

// report logs the converged component selection.
func report(logger *logging.Logger, st *store.Store, state *design.DesignState) {
	fields := map[string]interface{}{
		"iterations":   state.Iteration,
		"penalties":    state.Penalties,
		"total_loss_w": state.Loss.Total,
		"state_file":   st.Path(),
	}
	if state.Switch != nil {
		fields["switch"] = state.Switch.Switch.PartNumber
		fields["frequency_hz"] = state.Switch.Frequency
	}
	if state.Inductor != nil {
		fields["inductor"] = state.Inductor.Inductor.PartNumber
		fields["turns"] = state.Inductor.Turns
	}
	if state.InputBank != nil {
		fields["input_bank_parts"] = len(state.InputBank.Parts)
	}
	if state.OutputBank != nil {
		fields["output_bank_parts"] = len(state.OutputBank.Parts)
	}
	logger.Info("Design complete", fields)
}
