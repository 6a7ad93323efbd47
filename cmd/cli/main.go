package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gocredible/adapters/rng"
	"gocredible/domain/posterior"
	"gocredible/internal"
	"gocredible/internal/config"
	"gocredible/internal/dataset"
	"gocredible/internal/evaluation"
	inference "gocredible/internal/posterior"
	"gocredible/internal/report"
)

func main() {
	if err := godotenv.Load(); err == nil {
		internal.DefaultLogger = internal.NewDefaultLogger()
	}

	rootCmd := &cobra.Command{
		Use:   "gocredible",
		Short: "Bayesian credible intervals for classifier accuracy",
	}

	rootCmd.AddCommand(
		newEstimateCmd(),
		newEvaluateCmd(),
		newDeterminismCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// samplerFlags binds command-line overrides onto a sampler config
type samplerFlags struct {
	seed       int64
	samples    int
	warmup     int
	resample   int
	policy     string
	confidence float64
	stepSize   float64
	noAdapt    bool
	prior      string
}

func (f *samplerFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed (default from SAMPLER_SEED)")
	cmd.Flags().IntVar(&f.samples, "samples", 0, "Retained chain iterations")
	cmd.Flags().IntVar(&f.warmup, "warmup", 0, "Warm-up iterations (at least 100)")
	cmd.Flags().IntVar(&f.resample, "resample", -1, "Posterior draws resampled from the chain; 0 reports the chain")
	cmd.Flags().StringVar(&f.policy, "resample-policy", "", "with_replacement|without_replacement|none")
	cmd.Flags().Float64Var(&f.confidence, "confidence", 0, "Credible interval mass, e.g. 0.95")
	cmd.Flags().Float64Var(&f.stepSize, "step-size", 0, "Initial leapfrog step size")
	cmd.Flags().BoolVar(&f.noAdapt, "no-adapt", false, "Disable step-size adaptation during warm-up")
	cmd.Flags().StringVar(&f.prior, "prior", "", "uniform or beta(a,b) (default from SAMPLER_PRIOR)")
}

// estimator builds an estimator with the flag's prior, falling back to configured
func (f *samplerFlags) estimator(cmd *cobra.Command, configured string) (*inference.Estimator, error) {
	name := configured
	if cmd.Flags().Changed("prior") {
		name = f.prior
	}
	return newEstimator(name)
}

func (f *samplerFlags) apply(cmd *cobra.Command, cfg *posterior.SamplerConfig) error {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if flags.Changed("samples") {
		cfg.Samples = f.samples
	}
	if flags.Changed("warmup") {
		cfg.Warmup = f.warmup
	}
	if flags.Changed("resample") {
		cfg.Resample = f.resample
	}
	if flags.Changed("resample-policy") {
		policy, err := posterior.ParseResamplePolicy(f.policy)
		if err != nil {
			return err
		}
		cfg.ResamplePolicy = policy
	}
	if flags.Changed("confidence") {
		cfg.Confidence = f.confidence
	}
	if flags.Changed("step-size") {
		cfg.StepSize = f.stepSize
	}
	if f.noAdapt {
		cfg.AdaptStepSize = false
	}
	return nil
}

func newEstimateCmd() *cobra.Command {
	var successes, trials int
	var observationsFile string
	var format string
	var sf samplerFlags

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the accuracy posterior from test results",
		Long: `Estimate the posterior over a classifier's true correctness rate.

Give either counts or a file of 0/1 correctness values separated by
whitespace or commas ("-" reads stdin).

Example:
  gocredible estimate --successes 85 --trials 100
  gocredible estimate --observations results.txt --confidence 0.9 --format markdown
  gocredible estimate --successes 18 --trials 20 --prior "beta(2,2)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			cfg := appConfig.Sampler
			if err := sf.apply(cmd, &cfg); err != nil {
				return err
			}

			var obs posterior.Observations
			if observationsFile != "" {
				obs, err = readObservations(observationsFile, cmd.InOrStdin())
			} else {
				obs, err = posterior.FromCounts(successes, trials)
			}
			if err != nil {
				return err
			}

			estimator, err := sf.estimator(cmd, appConfig.Prior)
			if err != nil {
				return err
			}
			return runEstimate(cmd.Context(), cmd.OutOrStdout(), estimator, obs, cfg, format)
		},
	}

	cmd.Flags().IntVar(&successes, "successes", 0, "Number of correct predictions")
	cmd.Flags().IntVar(&trials, "trials", 0, "Number of test samples")
	cmd.Flags().StringVar(&observationsFile, "observations", "", "File of 0/1 correctness values")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|json|markdown|html")
	sf.register(cmd)
	return cmd
}

func newEvaluateCmd() *cobra.Command {
	var file, label, sizes, format string
	var testFraction float64
	var sf samplerFlags

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Train a decision tree and estimate its accuracy posterior",
		Long: `Split a labeled dataset, train a decision tree, score the held-out rows
and estimate the accuracy posterior for each sample size.

Without --file (or DATASET_FILE) a synthetic Gaussian-blob dataset is used.

Example:
  gocredible evaluate --file digits.xlsx --label label --sizes 100,0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			cfg := evaluation.ConfigFrom(appConfig)
			if err := sf.apply(cmd, &cfg.Sampler); err != nil {
				return err
			}
			if cmd.Flags().Changed("sizes") {
				if cfg.SampleSizes, err = config.ParseSampleSizes(sizes); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("test-fraction") {
				cfg.TestFraction = testFraction
			}
			if file == "" {
				file = appConfig.Data.File
			}
			if label == "" {
				label = appConfig.Data.LabelColumn
			}

			ds, err := loadDataset(cmd.Context(), file, label)
			if err != nil {
				return err
			}
			estimator, err := sf.estimator(cmd, appConfig.Prior)
			if err != nil {
				return err
			}
			return runEvaluate(cmd.Context(), cmd.OutOrStdout(), estimator, ds, cfg, format)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Dataset file (.csv or .xlsx)")
	cmd.Flags().StringVar(&label, "label", "", "Label column name")
	cmd.Flags().StringVar(&sizes, "sizes", "", "Comma-separated sample sizes; 0 means the full test set")
	cmd.Flags().Float64Var(&testFraction, "test-fraction", 0, "Share of rows held out for testing")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown|json|html")
	sf.register(cmd)
	return cmd
}

func newDeterminismCmd() *cobra.Command {
	var successes, trials int
	var sf samplerFlags

	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Check that two runs with the same seed give identical samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			cfg := appConfig.Sampler
			if err := sf.apply(cmd, &cfg); err != nil {
				return err
			}
			obs, err := posterior.FromCounts(successes, trials)
			if err != nil {
				return err
			}
			estimator, err := sf.estimator(cmd, appConfig.Prior)
			if err != nil {
				return err
			}
			return runDeterminism(cmd.Context(), cmd.OutOrStdout(), estimator, obs, cfg)
		},
	}

	cmd.Flags().IntVar(&successes, "successes", 85, "Number of correct predictions")
	cmd.Flags().IntVar(&trials, "trials", 100, "Number of test samples")
	sf.register(cmd)
	return cmd
}

func newEstimator(priorName string) (*inference.Estimator, error) {
	prior, err := inference.ParsePrior(priorName)
	if err != nil {
		return nil, err
	}
	return inference.NewEstimator(rng.NewPCGAdapter(), inference.WithPrior(prior)), nil
}

func runEstimate(ctx context.Context, w io.Writer, estimator *inference.Estimator, obs posterior.Observations, cfg posterior.SamplerConfig, format string) error {
	result, err := estimator.Estimate(ctx, obs, cfg)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "markdown":
		_, err = io.WriteString(w, report.MarkdownResult(result))
	case "html":
		_, err = w.Write(report.HTML(report.MarkdownResult(result), "Accuracy posterior"))
	case "text":
		s := result.Summary
		fmt.Fprintf(w, "Observations: %d (%d correct, rate %.4f)\n", result.Observations, result.Successes, result.EmpiricalRate())
		fmt.Fprintf(w, "Posterior mean: %.4f\n", s.Mean)
		fmt.Fprintf(w, "%.0f%% credible interval: [%.4f, %.4f] (width %.4f)\n", s.Confidence*100, s.Lower, s.Upper, s.Width())
		fmt.Fprintf(w, "Exact Beta posterior: mean %.4f, interval [%.4f, %.4f]\n", result.Analytic.Mean, result.Analytic.Lower, result.Analytic.Upper)
		fmt.Fprintf(w, "Acceptance %.2f, ESS %.1f, converged %t\n", result.Diagnostics.AcceptanceRate, result.Diagnostics.EffectiveSampleSize, result.Diagnostics.Converged)
		for _, warning := range result.Diagnostics.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warning)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return err
}

func runEvaluate(ctx context.Context, w io.Writer, estimator *inference.Estimator, ds *dataset.Dataset, cfg evaluation.Config, format string) error {
	exp, err := evaluation.NewRunner(estimator).Run(ctx, ds, cfg)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(exp)
	case "markdown":
		_, err = io.WriteString(w, report.Markdown(exp))
	case "html":
		_, err = w.Write(report.HTML(report.Markdown(exp), "Accuracy experiment"))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return err
}

func runDeterminism(ctx context.Context, w io.Writer, estimator *inference.Estimator, obs posterior.Observations, cfg posterior.SamplerConfig) error {
	first, err := estimator.Estimate(ctx, obs, cfg)
	if err != nil {
		return err
	}
	second, err := estimator.Estimate(ctx, obs, cfg)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(first.Samples, second.Samples) {
		return fmt.Errorf("runs %s and %s with seed %d differ", first.RunID, second.RunID, cfg.Seed)
	}
	fmt.Fprintf(w, "Runs %s and %s produced identical %d samples (inputs %s)\n",
		first.RunID, second.RunID, len(first.Samples), first.Fingerprint.Short())
	return nil
}

func loadDataset(ctx context.Context, file, label string) (*dataset.Dataset, error) {
	if file == "" {
		return dataset.Synthetic(dataset.DefaultSyntheticConfig())
	}
	return dataset.NewLoader(file, label).Load(ctx)
}

func readObservations(path string, stdin io.Reader) (posterior.Observations, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return posterior.Observations{}, fmt.Errorf("failed to read observations: %w", err)
	}

	fields := strings.FieldsFunc(string(data), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	values := make([]int, len(fields))
	for i, f := range fields {
		if values[i], err = strconv.Atoi(f); err != nil {
			return posterior.Observations{}, fmt.Errorf("observation %d: %w", i, err)
		}
	}
	return posterior.NewObservations(values)
}
