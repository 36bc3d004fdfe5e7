package pipeline

// categoryBenchmarks maps fund categories to their default benchmark
// index, used when a fund carries no benchmark of its own.
var categoryBenchmarks = map[string]string{
	"Equity: Large Cap":    "NIFTY 50",
	"Equity: Mid Cap":      "NIFTY Midcap 150",
	"Equity: Small Cap":    "NIFTY Smallcap 250",
	"Equity: Multi Cap":    "NIFTY 500",
	"Equity: Flexi Cap":    "NIFTY 500",
	"Equity: ELSS":         "NIFTY 500",
	"Equity: Index":        "NIFTY 50",
	"Hybrid: Aggressive":   "CRISIL Hybrid 35+65 Aggressive",
	"Hybrid: Conservative": "CRISIL Hybrid 85+15 Conservative",
	"Debt: Liquid":         "CRISIL Liquid Fund Index",
	"Debt: Short Duration": "CRISIL Short Term Bond Fund Index",
	"Debt: Gilt":           "CRISIL Dynamic Gilt Index",
}

// resolveBenchmarkName picks the benchmark for a fund: its own mapping
// first, then the category default. Empty means no benchmark is known
// and relative metrics stay absent.
func resolveBenchmarkName(benchmarkName, category string) string {
	if benchmarkName != "" {
		return benchmarkName
	}
	return categoryBenchmarks[category]
}
