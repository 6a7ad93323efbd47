package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gocredible/domain/core"
	"gocredible/domain/posterior"
	"gocredible/internal"
	"gocredible/internal/dataset"
	"gocredible/internal/errors"
	"gocredible/internal/evaluation"
	inference "gocredible/internal/posterior"
	"gocredible/internal/report"
)

// Handler serves posterior estimates and evaluation experiments over JSON
type Handler struct {
	estimator *inference.Estimator
	runner    *evaluation.Runner
	defaults  evaluation.Config
	dataset   *dataset.Dataset
	runs      *runCache
	logger    *internal.Logger
}

// NewHandler creates a handler. ds is the dataset evaluated when a request
// does not ask for a synthetic one; it may be nil.
func NewHandler(estimator *inference.Estimator, defaults evaluation.Config, ds *dataset.Dataset) *Handler {
	return &Handler{
		estimator: estimator,
		runner:    evaluation.NewRunner(estimator),
		defaults:  defaults,
		dataset:   ds,
		runs:      newRunCache(defaultCacheSize),
		logger:    internal.DefaultLogger.With("api"),
	}
}

// Register mounts the routes on a gin engine
func (h *Handler) Register(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	api.POST("/posterior", h.EstimatePosterior)
	api.GET("/posterior/:runId", h.GetPosterior)
	api.POST("/evaluate", h.Evaluate)
}

// NewRouter builds a gin engine with recovery and request logging
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	h.Register(router)
	return router
}

// PosteriorRequest carries either an explicit correctness vector or counts.
// Config fields that are omitted keep their server defaults.
type PosteriorRequest struct {
	Observations []int                   `json:"observations"`
	Successes    *int                    `json:"successes"`
	Trials       *int                    `json:"trials"`
	Prior        string                  `json:"prior"`
	Config       posterior.SamplerConfig `json:"config"`
}

// EvaluateRequest runs the train/score/estimate pipeline
type EvaluateRequest struct {
	SampleSizes  []int                    `json:"sample_sizes"`
	TestFraction float64                  `json:"test_fraction"`
	SplitSeed    int64                    `json:"split_seed"`
	MaxDepth     int                      `json:"max_depth"`
	Prior        string                   `json:"prior"`
	Sampler      posterior.SamplerConfig  `json:"sampler"`
	Synthetic    *dataset.SyntheticConfig `json:"synthetic"`
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EstimatePosterior runs one inference. ?format=markdown returns a report.
func (h *Handler) EstimatePosterior(c *gin.Context) {
	req := PosteriorRequest{Config: h.defaults.Sampler}
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	obs, err := req.observations()
	if err != nil {
		h.respondError(c, errors.InvalidInput("invalid observations", err))
		return
	}
	estimator, err := h.estimatorFor(req.Prior)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := estimator.Estimate(c.Request.Context(), obs, req.Config)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.runs.put(result)

	if strings.EqualFold(c.Query("format"), "markdown") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.MarkdownResult(result)))
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPosterior returns a recent result by run ID
func (h *Handler) GetPosterior(c *gin.Context) {
	runID, err := core.ParseRunID(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run ID", "details": err.Error()})
		return
	}
	result, ok := h.runs.get(runID)
	if !ok {
		h.respondError(c, &errors.AppError{
			Code:    errors.CodeNotFound,
			Message: "run lookup failed",
			Cause:   core.NewNotFoundError("run", runID.String()),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Evaluate trains a tree and estimates its accuracy posterior
func (h *Handler) Evaluate(c *gin.Context) {
	req := EvaluateRequest{
		SampleSizes:  h.defaults.SampleSizes,
		TestFraction: h.defaults.TestFraction,
		SplitSeed:    h.defaults.SplitSeed,
		MaxDepth:     h.defaults.MaxDepth,
		Sampler:      h.defaults.Sampler,
	}
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ds := h.dataset
	if req.Synthetic != nil || ds == nil {
		cfg := dataset.DefaultSyntheticConfig()
		if req.Synthetic != nil {
			cfg = *req.Synthetic
		}
		var err error
		ds, err = dataset.Synthetic(cfg)
		if err != nil {
			h.respondError(c, errors.InvalidInput("invalid synthetic dataset", err))
			return
		}
	}

	cfg := h.defaults
	cfg.SampleSizes = req.SampleSizes
	cfg.TestFraction = req.TestFraction
	cfg.SplitSeed = req.SplitSeed
	cfg.MaxDepth = req.MaxDepth
	cfg.Sampler = req.Sampler

	runner := h.runner
	if req.Prior != "" {
		estimator, err := h.estimatorFor(req.Prior)
		if err != nil {
			h.respondError(c, err)
			return
		}
		runner = evaluation.NewRunner(estimator)
	}

	exp, err := runner.Run(c.Request.Context(), ds, cfg)
	if err != nil {
		h.respondError(c, err)
		return
	}
	for _, sr := range exp.Results {
		h.runs.put(sr.Result)
	}

	if strings.EqualFold(c.Query("format"), "markdown") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(exp)))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"experiment": exp,
		"narrowing":  exp.Narrowing(),
	})
}

// bindJSON decodes the body into obj. An empty body keeps the defaults.
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// estimatorFor returns the shared estimator, or a copy using the named prior
func (h *Handler) estimatorFor(prior string) (*inference.Estimator, error) {
	if prior == "" {
		return h.estimator, nil
	}
	p, err := inference.ParsePrior(prior)
	if err != nil {
		return nil, errors.InvalidInput("invalid prior", err)
	}
	return h.estimator.With(inference.WithPrior(p)), nil
}

func (r PosteriorRequest) observations() (posterior.Observations, error) {
	if len(r.Observations) > 0 {
		return posterior.NewObservations(r.Observations)
	}
	if r.Successes != nil && r.Trials != nil {
		return posterior.FromCounts(*r.Successes, *r.Trials)
	}
	// empty input is rejected by the estimator with its own message
	return posterior.Observations{}, nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeCanceled:
		status = http.StatusServiceUnavailable
	case errors.CodeNumerical:
		status = http.StatusUnprocessableEntity
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
