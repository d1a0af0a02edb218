package main

import (
	"slices"
	"time"
)

// operation is one request measured by the benchmark
type operation struct {
	name   string
	method string
	params func(uri string) any
}

func textDocument(uri string) map[string]any {
	return map[string]any{"uri": uri}
}

func position(line, character int) func(string) any {
	return func(uri string) any {
		return map[string]any{
			"textDocument": textDocument(uri),
			"position":     map[string]any{"line": line, "character": character},
		}
	}
}

func documentOnly(uri string) any {
	return map[string]any{"textDocument": textDocument(uri)}
}

// operations are measured against sampleDocument; positions point into it
var operations = []operation{
	{name: "hover (style)", method: "textDocument/hover", params: position(4, 8)},
	{name: "hover (script)", method: "textDocument/hover", params: position(16, 14)},
	{name: "documentColor", method: "textDocument/documentColor", params: documentOnly},
	{name: "documentSymbol", method: "textDocument/documentSymbol", params: documentOnly},
	{name: "documentLink", method: "textDocument/documentLink", params: documentOnly},
	{name: "foldingRange", method: "textDocument/foldingRange", params: documentOnly},
	{name: "diagnostic", method: "textDocument/diagnostic", params: documentOnly},
}

// measure runs fn iterations times and summarizes the latencies. Failed
// calls are counted but not timed.
func measure(name string, iterations int, fn func() error) OperationResult {
	latencies := make([]time.Duration, 0, iterations)
	failures := 0
	for range iterations {
		start := time.Now()
		if err := fn(); err != nil {
			failures++
			continue
		}
		latencies = append(latencies, time.Since(start))
	}

	result := computeStats(name, latencies)
	result.Failures = failures
	return result
}

func computeStats(name string, latencies []time.Duration) OperationResult {
	if len(latencies) == 0 {
		return OperationResult{Name: name}
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	return OperationResult{
		Name:       name,
		AvgLatency: sum / time.Duration(len(sorted)),
		MinLatency: sorted[0],
		MaxLatency: sorted[len(sorted)-1],
		P50Latency: percentile(sorted, 50),
		P95Latency: percentile(sorted, 95),
		P99Latency: percentile(sorted, 99),
		Iterations: len(sorted),
	}
}

// percentile uses the nearest-rank method on sorted latencies
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	return sorted[max(rank-1, 0)]
}
