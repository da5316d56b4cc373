// Package main provides a performance benchmarking tool for semester summaries.
// It builds a synthetic semester with many courses, puts a fixed latency in front of
// every backend read and measures how batch size and the request cache change the
// time to build a summary. The first run of each suite is cold, the rest are warm.
//
// Usage: go run benchmark/main.go [latency]
//
//	latency: Delay added to every read, e.g. 20ms (default 10ms)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/trackademic/trackademic/core"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/internal/store"
	"github.com/trackademic/trackademic/schema"
)

// BenchmarkResult holds the timings of one suite (cold run and average of warm runs).
type BenchmarkResult struct {
	Courses   int
	BatchSize int
	ColdTime  string
	WarmTime  string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Latency     time.Duration
	Runs        int
	CourseSizes []int
	BatchSizes  []int
}

// slowSource delays every read to mimic a remote backend.
type slowSource struct {
	contract.DataSource
	latency time.Duration
}

func (s slowSource) wait(ctx context.Context) error {
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s slowSource) GetStudentCourses(ctx context.Context, studentID, semester string) ([]schema.StudentCourse, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.DataSource.GetStudentCourses(ctx, studentID, semester)
}

func (s slowSource) GetEvaluationPlans(ctx context.Context, subjectCode, semester string) ([]schema.EvaluationPlan, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.DataSource.GetEvaluationPlans(ctx, subjectCode, semester)
}

func (s slowSource) GetGradesBySemester(ctx context.Context, studentID, semester string) ([]schema.GradeRecord, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.DataSource.GetGradesBySemester(ctx, studentID, semester)
}

func (s slowSource) GetCourse(ctx context.Context, subjectCode string) (*schema.Course, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.DataSource.GetCourse(ctx, subjectCode)
}

func main() {
	config := BenchmarkConfig{
		Latency:     10 * time.Millisecond,
		Runs:        4,
		CourseSizes: []int{5, 20, 50},
		BatchSizes:  []int{1, 5, 10},
	}
	if len(os.Args) == 2 {
		d, err := time.ParseDuration(os.Args[1])
		if err != nil {
			fmt.Printf("Usage: %s [latency]\n", os.Args[0])
			os.Exit(1)
		}
		config.Latency = d
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// syntheticDataset enrolls the demo student in n courses, each half graded.
func syntheticDataset(n int) schema.Dataset {
	var data schema.Dataset
	for i := range n {
		code := fmt.Sprintf("BM%03d", i)
		planID := "plan-" + code
		data.Courses = append(data.Courses, schema.Course{Code: code, Title: "Course " + code, Credits: 3})
		data.Enrollments = append(data.Enrollments, schema.StudentCourse{
			StudentID: contract.DefaultStudentID, SubjectCode: code, Semester: contract.DefaultSemester,
		})
		data.Plans = append(data.Plans, schema.EvaluationPlan{
			ID: planID, SubjectCode: code, Semester: contract.DefaultSemester,
			Activities: []schema.Activity{
				{ID: "a1", Name: "Quiz", Percentage: 25},
				{ID: "a2", Name: "Midterm", Percentage: 25},
				{ID: "a3", Name: "Project", Percentage: 25},
				{ID: "a4", Name: "Final", Percentage: 25},
			},
		})
		for _, act := range []string{"a1", "a2"} {
			data.Grades = append(data.Grades, schema.StudentGrade{
				EvaluationPlanID: planID, SubjectCode: code, StudentID: contract.DefaultStudentID,
				ActivityID: act, Semester: contract.DefaultSemester, Grade: 4,
			})
		}
	}
	return data
}

// runBenchmarks executes every course count and batch size combination.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %v latency, %d runs per suite\n", config.Latency, config.Runs)

	for _, courses := range config.CourseSizes {
		src := slowSource{DataSource: store.NewMemoryStore(syntheticDataset(courses)), latency: config.Latency}
		for _, batch := range config.BatchSizes {
			results = append(results, runBenchmarkSuite(config, src, courses, batch))
		}
	}
	return results
}

// runBenchmarkSuite runs one cold summary and config.Runs-1 warm ones on a shared cache.
func runBenchmarkSuite(config BenchmarkConfig, src contract.DataSource, courses, batch int) BenchmarkResult {
	fmt.Printf("Running %d courses with batch size %d\n", courses, batch)

	cfg := &contract.Config{
		StudentID:     contract.DefaultStudentID,
		Semester:      contract.DefaultSemester,
		BatchSize:     batch,
		AveragePolicy: schema.NonZeroAverage,
	}
	ctx := core.WithSuppressLogs(context.Background())
	rc := reqcache.New()

	var times []float64
	for range config.Runs {
		start := time.Now()
		if _, err := core.BuildSemesterReport(ctx, src, rc, cfg); err != nil {
			fmt.Printf("  run failed: %v\n", err)
			continue
		}
		times = append(times, time.Since(start).Seconds())
	}

	result := BenchmarkResult{Courses: courses, BatchSize: batch, ColdTime: "FAILED", WarmTime: "FAILED"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if warm := times[min(1, len(times)):]; len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}
	fmt.Printf("  Cold time: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
	return result
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/trackademic_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"courses", "batch_size", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{fmt.Sprint(r.Courses), fmt.Sprint(r.BatchSize), r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %3d courses, batch %2d: Cold: %s, Warm: %s\n", r.Courses, r.BatchSize, r.ColdTime, r.WarmTime)
	}
}
