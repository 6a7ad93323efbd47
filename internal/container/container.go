package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gocredible/adapters/rng"
	"gocredible/internal"
	"gocredible/internal/api"
	"gocredible/internal/config"
	"gocredible/internal/dataset"
	"gocredible/internal/evaluation"
	inference "gocredible/internal/posterior"
	"gocredible/ports"
	"gocredible/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	RNG       ports.RNGPort
	Estimator *inference.Estimator
	Defaults  evaluation.Config

	// Dataset is the configured evaluation dataset; nil means synthetic
	Dataset *dataset.Dataset

	servers []*http.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.DefaultLogger.With("container")
	rngPort := rng.NewPCGAdapter()

	prior, err := inference.ParsePrior(cfg.Prior)
	if err != nil {
		return nil, fmt.Errorf("invalid prior: %w", err)
	}
	logger.Debug("estimator prior %s", prior.Name())

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		RNG:       rngPort,
		Estimator: inference.NewEstimator(rngPort, inference.WithPrior(prior)),
		Defaults:  evaluation.ConfigFrom(cfg),
	}
	return c, nil
}

// LoadDataset reads DATASET_FILE when it is set
func (c *Container) LoadDataset(ctx context.Context) error {
	if c.Config.Data.File == "" {
		c.Logger.Info("no DATASET_FILE configured, evaluations use the synthetic dataset")
		return nil
	}
	ds, err := dataset.NewLoader(c.Config.Data.File, c.Config.Data.LabelColumn).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	c.Logger.Info("loaded %s", ds)
	c.Dataset = ds
	return nil
}

// APIServer builds the JSON API server on PORT
func (c *Container) APIServer() *http.Server {
	gin.SetMode(c.Config.Server.GinMode)
	handler := api.NewHandler(c.Estimator, c.Defaults, c.Dataset)
	srv := &http.Server{
		Addr:              ":" + c.Config.Server.Port,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.servers = append(c.servers, srv)
	return srv
}

// UIServer builds the HTML report server on UI_PORT
func (c *Container) UIServer() (*http.Server, error) {
	app, err := ui.NewApp(c.Estimator, ui.Config{
		Defaults: c.Defaults,
		Dataset:  c.Dataset,
	})
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Addr:              ":" + c.Config.Server.UIPort,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.servers = append(c.servers, srv)
	return srv, nil
}

// Shutdown gracefully shuts down all servers built by the container
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, srv := range c.servers {
		if err := srv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
