// Package main provides a performance benchmarking tool for the timesplit report command.
// It seeds SQLite stores of increasing size with synthetic intervals, then times
// metric and interval reports on each, treating the first successful run as cold
// and averaging the rest as warm, and writes the results as CSV.
//
// Prerequisites:
// - timesplit binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated stores and data files
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset  string
	Command  string
	SeedTime string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Branches int
	Datasets map[string]int // Dataset name -> number of intervals
	Order    []string
}

// legacyEntry mirrors the import format of `timesplit store import`.
type legacyEntry struct {
	Branch    string `json:"branch"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	IsActive  bool   `json:"isActive"`
	Type      string `json:"type"`
}

const benchRepo = "/bench/repo"

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:  os.Args[1],
		Timeout:  2 * time.Minute,
		Runs:     4,
		Branches: 40,
		Datasets: map[string]int{"small": 1_000, "medium": 20_000, "large": 200_000},
		Order:    []string{"small", "medium", "large"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the timesplit binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("timesplit"); err != nil {
		return fmt.Errorf("timesplit binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks seeds every dataset and times the report commands on it
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d runs, %d branches\n",
		len(config.Order), config.Timeout, config.Runs, config.Branches)

	for _, name := range config.Order {
		size := config.Datasets[name]
		fmt.Printf("Benchmarking %s (%d intervals)\n", name, size)

		dbPath := filepath.Join(config.WorkDir, name+".db")
		seedTime, err := seedStore(config, name, dbPath, size)
		if err != nil {
			fmt.Printf("  Seeding failed: %v\n", err)
			continue
		}

		results = append(results, runBenchmarkSuite(config, name, dbPath, seedTime, "metrics", ""))
		results = append(results, runBenchmarkSuite(config, name, dbPath, seedTime, "intervals", "--intervals --limit 1000"))
		results = append(results, runBenchmarkSuite(config, name, dbPath, seedTime, "sorted", "--sort total --order asc"))
	}

	return results
}

// seedStore writes a synthetic data file and imports it into a fresh store
func seedStore(config BenchmarkConfig, name, dbPath string, size int) (string, error) {
	_ = os.Remove(dbPath)
	dataPath := filepath.Join(config.WorkDir, name+".json")
	if err := writeDataset(dataPath, size, config.Branches); err != nil {
		return "", err
	}

	start := time.Now()
	cmd := exec.Command("timesplit", "store", "import", dataPath, "--repo", benchRepo,
		"--store-backend", "sqlite", "--store-db-connect", dbPath)
	cmd.Dir = config.WorkDir
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w: %s", err, string(output))
	}
	return fmt.Sprintf("%.3fs", time.Since(start).Seconds()), nil
}

// writeDataset generates back-to-back intervals spread over random branches
func writeDataset(path string, size, branches int) error {
	rng := rand.New(rand.NewPCG(42, uint64(size)))
	entries := make([]legacyEntry, size)
	cursor := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
	for i := range entries {
		length := int64(30_000 + rng.IntN(3_600_000))
		kind := "active"
		if rng.IntN(4) == 0 {
			kind = "inactive"
		}
		entries[i] = legacyEntry{
			Branch:    fmt.Sprintf("feature/task-%03d", rng.IntN(branches)),
			StartTime: cursor,
			EndTime:   cursor + length,
			Type:      kind,
		}
		cursor += length
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return json.NewEncoder(file).Encode(entries)
}

// runBenchmarkSuite runs a report command several times against one store
func runBenchmarkSuite(config BenchmarkConfig, dataset, dbPath, seedTime, command, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s report on %s\n", command, dataset)

	coldTime, times := runBenchmark(config, dbPath, extraArgs)
	warmAvg := "TIMEOUT"
	if len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  Seed: %s, Cold time: %s, Warm average: %s\n", seedTime, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:  dataset,
		Command:  command,
		SeedTime: seedTime,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a report multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dbPath, extraArgs string) (coldTime float64, warmTimes []float64) {
	args := []string{"report", "--store-backend", "sqlite", "--store-db-connect", dbPath, "--color", "no"}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("timesplit", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Report completed in") &&
		strings.Contains(outputStr, "Store backend: sqlite")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/timesplit_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "seed_time", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.SeedTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "metrics", "Metrics Report:")
	printCommandSummary(results, "intervals", "Intervals Report:")
	printCommandSummary(results, "sorted", "Sorted Metrics Report:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: Seed: %s, Cold: %s, Warm: %s\n", result.Dataset, result.SeedTime, result.ColdTime, result.WarmTime)
		}
	}
}
