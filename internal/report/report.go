// Package report formats and exports benchmark results. The headline
// per-scenario line keeps the suite's historical shape: the name
// left-padded to 30 columns and the nearest-rank median in seconds.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mongomark/internal/harness"
	"mongomark/internal/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Line renders one scenario's reporting line, e.g.
// "FindOneByID                   0.812".
func Line(res *harness.Result) (string, error) {
	med, err := res.Median()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%-30s%5.3f", res.Scenario, med.Seconds()), nil
}

// Table renders the verbose latency table for a finished run: the
// nearest-rank median plus histogram-derived tail figures per
// scenario.
func Table(results []*harness.Result) (string, error) {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"%-30s%6s%10s%10s%10s%10s  %s",
		"Scenario", "Iters", "p50 (s)", "p90 (s)", "p99 (s)", "max (s)", "Stopped by",
	)))
	b.WriteByte('\n')

	for _, res := range results {
		med, err := res.Median()
		if err != nil {
			return "", fmt.Errorf("%s: %w", res.Scenario, err)
		}
		sum := stats.NewSummary(res.Samples)

		b.WriteString(fmt.Sprintf(
			"%-30s%6d%10.3f%10.3f%10.3f%10.3f  %s\n",
			res.Scenario,
			res.Iterations,
			med.Seconds(),
			sum.Quantile(90).Seconds(),
			sum.Quantile(99).Seconds(),
			sum.Max().Seconds(),
			dimStyle.Render(res.Reason.String()),
		))
	}
	return b.String(), nil
}
