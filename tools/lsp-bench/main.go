package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type BenchmarkResults struct {
	Timestamp   time.Time         `json:"timestamp"`
	Server      string            `json:"server"`
	Document    string            `json:"document"`
	Iterations  int               `json:"iterations"`
	Operations  []OperationResult `json:"operations"`
	MemoryUsage MemoryStats       `json:"memory_usage"`
}

type OperationResult struct {
	Name       string        `json:"name"`
	AvgLatency time.Duration `json:"avg_latency_ns"`
	MinLatency time.Duration `json:"min_latency_ns"`
	MaxLatency time.Duration `json:"max_latency_ns"`
	P50Latency time.Duration `json:"p50_latency_ns"`
	P95Latency time.Duration `json:"p95_latency_ns"`
	P99Latency time.Duration `json:"p99_latency_ns"`
	Iterations int           `json:"iterations"`
	Failures   int           `json:"failures,omitempty"`
}

type MemoryStats struct {
	Idle      uint64 `json:"idle_bytes"`
	UnderLoad uint64 `json:"under_load_bytes"`
}

// sampleDocument exercises every kind of embedded region
const sampleDocument = `<html>
<head>
  <style>
    .card {
      color: #3366ff;
      background: rgb(240, 240, 240);
    }
    @media (min-width: 40em) {
      .card { padding: 2rem }
    }
  </style>
  <script src="./app.js"></script>
</head>
<body>
  <div class="card" style="border: 1px solid hsl(0, 0%, 80%)" onclick="toggle(this)">Card</div>
  <script type="module">
    function toggle(el) {
      el.classList.toggle("open");
    }
    const styles = css` + "`" + `:host { color: rebeccapurple; }` + "`" + `;
  </script>
</body>
</html>
`

func main() {
	serverCmd := flag.String("server", "", "Server command to benchmark (e.g. 'embedded-language-server --stdio')")
	documentPath := flag.String("file", "", "HTML document to benchmark against; positions assume the built-in sample")
	iterations := flag.Int("iterations", 100, "Number of iterations per operation")
	outputFile := flag.String("output", "benchmark-results.json", "Output file for results")
	flag.Parse()

	if *serverCmd == "" {
		fmt.Fprintf(os.Stderr, "Error: --server flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*serverCmd, *documentPath, *iterations, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(serverCmd, documentPath string, iterations int, outputFile string) error {
	text := sampleDocument
	name := "sample"
	if documentPath != "" {
		data, err := os.ReadFile(documentPath) //nolint:gosec // G304: the document is the benchmark's input
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		text = string(data)
		name = documentPath
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	rootURI := "file://" + filepath.ToSlash(cwd)
	uri := rootURI + "/benchmark.html"

	fmt.Printf("LSP Benchmark Harness\n")
	fmt.Printf("Server: %s\nDocument: %s\nIterations: %d\n\n", serverCmd, name, iterations)

	client, err := NewLSPClient(serverCmd)
	if err != nil {
		return fmt.Errorf("failed to start LSP server: %w", err)
	}
	defer func() { _ = client.Close() }()

	results := BenchmarkResults{
		Timestamp:  time.Now(),
		Server:     serverCmd,
		Document:   name,
		Iterations: iterations,
	}

	initResult := measure("initialize", 1, func() error { return client.Initialize(rootURI) })
	if initResult.Failures > 0 {
		return fmt.Errorf("initialize failed")
	}
	results.Operations = append(results.Operations, initResult)

	idle, err := client.ProcessMemory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Memory usage unavailable: %v\n", err)
	}

	if err := client.DidOpen(uri, text); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	for _, op := range operations {
		fmt.Printf("Benchmarking %s (%d iterations)...\n", op.name, iterations)
		params := op.params(uri)
		result := measure(op.name, iterations, func() error {
			_, err := client.Request(op.method, params)
			return err
		})
		results.Operations = append(results.Operations, result)
		fmt.Printf("   avg: %v, p95: %v, p99: %v, failures: %d\n", result.AvgLatency, result.P95Latency, result.P99Latency, result.Failures)
	}

	underLoad, _ := client.ProcessMemory()
	results.MemoryUsage = MemoryStats{Idle: idle, UnderLoad: underLoad}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil { //nolint:gosec // G306: results are not sensitive
		return fmt.Errorf("failed to write results: %w", err)
	}

	fmt.Printf("\nResults saved to %s\n", outputFile)
	printSummary(results)
	return nil
}

func printSummary(results BenchmarkResults) {
	fmt.Printf("\nSummary\n")
	fmt.Printf("==================\n")
	for _, op := range results.Operations {
		fmt.Printf("%-20s: avg=%10v  p95=%10v  p99=%10v\n", op.Name, op.AvgLatency, op.P95Latency, op.P99Latency)
	}
	fmt.Printf("\nMemory Usage:\n")
	fmt.Printf("  Idle:       %d bytes (%.2f MB)\n", results.MemoryUsage.Idle, float64(results.MemoryUsage.Idle)/1024/1024)
	fmt.Printf("  Under Load: %d bytes (%.2f MB)\n", results.MemoryUsage.UnderLoad, float64(results.MemoryUsage.UnderLoad)/1024/1024)
}
