package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gocredible/domain/posterior"
	"gocredible/internal/dataset"
	"gocredible/internal/errors"
	"gocredible/internal/evaluation"
	inference "gocredible/internal/posterior"
	"gocredible/internal/report"
)

//go:embed templates/*
var embeddedFiles embed.FS

// App serves HTML posterior reports
type App struct {
	router    *chi.Mux
	estimator *inference.Estimator
	runner    *evaluation.Runner
	defaults  evaluation.Config
	dataset   *dataset.Dataset
	templates *template.Template
}

// Config holds UI application configuration
type Config struct {
	Defaults evaluation.Config
	// Dataset is evaluated on /experiment; nil uses the synthetic dataset
	Dataset *dataset.Dataset
}

// NewApp creates a new UI application
func NewApp(estimator *inference.Estimator, config Config) (*App, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	ds := config.Dataset
	if ds == nil {
		ds, err = dataset.Synthetic(dataset.DefaultSyntheticConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to build synthetic dataset: %w", err)
		}
	}

	app := &App{
		router:    chi.NewRouter(),
		estimator: estimator,
		runner:    evaluation.NewRunner(estimator),
		defaults:  config.Defaults,
		dataset:   ds,
		templates: templates,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/report", a.handleReport)
	a.router.Get("/experiment", a.handleExperiment)
}

// Handler exposes the router for embedding and tests
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "index.html", map[string]interface{}{
		"Title":      "Classifier accuracy posterior",
		"Successes":  85,
		"Trials":     100,
		"Confidence": a.defaults.Sampler.Confidence,
		"Dataset":    a.dataset.Name,
	})
}

// handleReport renders the posterior for ?successes=&trials=[&confidence=][&prior=]
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	successes, err := strconv.Atoi(q.Get("successes"))
	if err != nil {
		http.Error(w, "successes must be an integer", http.StatusBadRequest)
		return
	}
	trials, err := strconv.Atoi(q.Get("trials"))
	if err != nil {
		http.Error(w, "trials must be an integer", http.StatusBadRequest)
		return
	}

	cfg := a.defaults.Sampler
	if raw := q.Get("confidence"); raw != "" {
		if cfg.Confidence, err = strconv.ParseFloat(raw, 64); err != nil {
			http.Error(w, "confidence must be a number", http.StatusBadRequest)
			return
		}
	}

	estimator := a.estimator
	if raw := q.Get("prior"); raw != "" {
		prior, err := inference.ParsePrior(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		estimator = a.estimator.With(inference.WithPrior(prior))
	}

	obs, err := posterior.FromCounts(successes, trials)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := estimator.Estimate(r.Context(), obs, cfg)
	if err != nil {
		a.renderError(w, err)
		return
	}
	a.renderHTML(w, report.HTML(report.MarkdownResult(result), "Accuracy posterior"))
}

func (a *App) handleExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := a.runner.Run(r.Context(), a.dataset, a.defaults)
	if err != nil {
		a.renderError(w, err)
		return
	}
	a.renderHTML(w, report.HTML(report.Markdown(exp), "Accuracy experiment"))
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (a *App) renderHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page); err != nil {
		log.Printf("Write error: %v", err)
	}
}

func (a *App) renderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.GetCode(err) == errors.CodeInvalidInput {
		status = http.StatusBadRequest
	} else {
		log.Printf("Report error: %v", err)
	}
	http.Error(w, err.Error(), status)
}
