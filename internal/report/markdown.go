package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gocredible/domain/posterior"
	"gocredible/internal/evaluation"
	"gocredible/internal/profiling"
)

const (
	histogramBins  = 20
	histogramWidth = 40
	maxFeatureRows = 20
)

// Markdown renders an evaluation experiment
func Markdown(exp *evaluation.Experiment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Accuracy posterior: %s\n\n", exp.Dataset)
	fmt.Fprintf(&b, "- Experiment: `%s`\n", exp.ID)
	fmt.Fprintf(&b, "- Train rows: %d\n", exp.TrainSize)
	fmt.Fprintf(&b, "- Test rows: %d\n", exp.TestSize)
	fmt.Fprintf(&b, "- Test accuracy: %.4f\n", exp.TestAccuracy)
	if exp.Duration > 0 {
		fmt.Fprintf(&b, "- Duration: %s\n", exp.Duration.Round(time.Millisecond))
	}
	b.WriteString("\n")

	b.WriteString("| N | Successes | Mean | Lower | Upper | Width | Analytic mean | Converged |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, sr := range exp.Results {
		r := sr.Result
		fmt.Fprintf(&b, "| %d | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %s |\n",
			sr.SampleSize, r.Successes, r.Summary.Mean, r.Summary.Lower, r.Summary.Upper,
			r.Summary.Width(), r.Analytic.Mean, yesNo(r.Diagnostics.Converged))
	}
	b.WriteString("\n")

	if len(exp.Results) > 1 {
		if exp.Narrowing() {
			b.WriteString("The credible interval narrows as the sample size grows.\n\n")
		} else {
			b.WriteString("**Warning:** the credible interval did not narrow with more observations.\n\n")
		}
	}

	writeFeatures(&b, exp.Features)

	for _, sr := range exp.Results {
		fmt.Fprintf(&b, "## N = %d\n\n", sr.SampleSize)
		writeResultBody(&b, sr.Result)
	}
	return b.String()
}

// MarkdownResult renders a single inference run
func MarkdownResult(r *posterior.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Accuracy posterior (%d/%d correct)\n\n", r.Successes, r.Observations)
	writeResultBody(&b, r)
	return b.String()
}

func writeResultBody(b *strings.Builder, r *posterior.Result) {
	s := r.Summary
	fmt.Fprintf(b, "- Run: `%s` (inputs `%s`)\n", r.RunID, r.Fingerprint.Short())
	fmt.Fprintf(b, "- Prior: %s\n", r.Prior)
	fmt.Fprintf(b, "- Empirical rate: %.4f\n", r.EmpiricalRate())
	fmt.Fprintf(b, "- Posterior mean: %.4f (sd %.4f, median %.4f)\n", s.Mean, s.StdDev, s.Median)
	fmt.Fprintf(b, "- %.0f%% credible interval: [%.4f, %.4f] (width %.4f)\n", s.Confidence*100, s.Lower, s.Upper, s.Width())
	fmt.Fprintf(b, "- Exact Beta posterior: mean %.4f, interval [%.4f, %.4f]\n", r.Analytic.Mean, r.Analytic.Lower, r.Analytic.Upper)
	if shape, err := profiling.ProfileColumn("samples", r.Samples); err == nil {
		fmt.Fprintf(b, "- Sample skewness: %.3f\n", shape.Skewness)
	}
	b.WriteString("\n")

	d := r.Diagnostics
	b.WriteString("### Diagnostics\n\n")
	b.WriteString("| Acceptance | Divergences | ESS | Step size | Converged |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(b, "| %.3f | %d | %.1f | %.4g | %s |\n\n",
		d.AcceptanceRate, d.Divergences, d.EffectiveSampleSize, d.FinalStepSize, yesNo(d.Converged))
	for _, w := range d.Warnings {
		fmt.Fprintf(b, "- **Warning:** %s\n", w)
	}
	if len(d.Warnings) > 0 {
		b.WriteString("\n")
	}

	bins, err := RangeHistogram(r.Samples, histogramBins)
	if err != nil {
		return
	}
	b.WriteString("### Posterior samples\n\n```\n")
	b.WriteString(TextHistogram(bins, histogramWidth))
	b.WriteString("```\n\n")
}

func writeFeatures(b *strings.Builder, features []profiling.ColumnProfile) {
	if len(features) == 0 {
		return
	}
	fmt.Fprintf(b, "## Features\n\n%d features, %d constant on the training rows.\n\n",
		len(features), profiling.CountConstant(features))
	b.WriteString("| Feature | Mean | Std dev | Min | Max | Skewness |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for i, f := range features {
		if i == maxFeatureRows {
			fmt.Fprintf(b, "\n_%d more features omitted._\n", len(features)-maxFeatureRows)
			break
		}
		fmt.Fprintf(b, "| %s | %.3f | %.3f | %.3f | %.3f | %.3f |\n", f.Name, f.Mean, f.StdDev, f.Min, f.Max, f.Skewness)
	}
	b.WriteString("\n")
}

// TextHistogram draws bins as rows of '#' scaled to width characters
func TextHistogram(bins []Bin, width int) string {
	peak := 0
	for _, bin := range bins {
		peak = max(peak, bin.Count)
	}
	var b strings.Builder
	for _, bin := range bins {
		bar := 0
		if peak > 0 {
			bar = bin.Count * width / peak
		}
		fmt.Fprintf(&b, "%.4f-%.4f | %-*s %d\n", bin.Lower, bin.Upper, width, strings.Repeat("#", bar), bin.Count)
	}
	return b.String()
}

// HTML renders markdown as a complete HTML page. Fraction rewriting is off
// so counts like 85/100 render as written.
func HTML(md string, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags&^html.SmartypantsFractions | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
