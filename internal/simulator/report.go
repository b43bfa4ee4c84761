package simulator

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, res *Result) {
	stats := res.Stats
	mean := stats.Mean()
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS ===\n")
	fmt.Fprintf(w, "Rounds played: %d (%d workers, seed %d)\n", stats.Rounds, res.Workers, res.Seed)
	if res.Duration > 0 && stats.Rounds > 0 {
		perSec := float64(stats.Rounds) / res.Duration.Seconds()
		fmt.Fprintf(w, "Total time: %v (%.0f rounds/sec)\n", res.Duration.Round(time.Millisecond), perSec)
	}

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: $%.4f/round\n", mean)
	fmt.Fprintf(w, "Median: $%.4f/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: $%.4f\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: $%.4f\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] $/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.2f, P25=%.2f, P75=%.2f, P95=%.2f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))
	fmt.Fprintf(w, "Return to player: %.2f%%\n", stats.ReturnToPlayer()*100)
	fmt.Fprintf(w, "Largest win: $%.2f, largest loss: $%.2f\n", stats.MaxWin, stats.MaxLoss)

	if !stats.IsLedgerBalanced() {
		fmt.Fprintf(w, "LEDGER MISMATCH! AllNet: %.6f, WonNet: %.6f, LostNet: %.6f\n",
			stats.AllNet, stats.WonNet, stats.LostNet)
	}

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	fmt.Fprintf(w, "Rounds: %d won (%s), %d lost (%s), %d pushed (%s)\n",
		stats.RoundsWon, pct(stats.RoundsWon, stats.Rounds),
		stats.RoundsLost, pct(stats.RoundsLost, stats.Rounds),
		stats.RoundsPushed, pct(stats.RoundsPushed, stats.Rounds))
	fmt.Fprintf(w, "Hands: %d won, %d lost\n", stats.HandsWon, stats.HandsLost)
	fmt.Fprintf(w, "Blackjacks: %d, player busts: %d, dealer busts: %d\n",
		stats.Blackjacks, stats.Busts, stats.DealerBusts)
	fmt.Fprintf(w, "Bankrupt sessions: %d\n", res.Bankruptcies)

	fmt.Fprintf(w, "\n=== OPENING ANALYSIS ===\n")
	openings := make([]string, 0, len(stats.Openings))
	for name := range stats.Openings {
		openings = append(openings, name)
	}
	sort.Strings(openings)
	for _, name := range openings {
		os := stats.Openings[name]
		fmt.Fprintf(w, "%-7s %d rounds (%s), $%.3f/round\n",
			name+":", os.Rounds, pct(os.Rounds, stats.Rounds), stats.OpeningMean(name))
	}
}

func pct(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
