package reports

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Output describes one written report.
type Output struct {
	Name     string
	FilePath string
	Rows     int
	Duration time.Duration
}

// Result aggregates a report run. Err combines every failed report.
type Result struct {
	Outputs []Output
	Failed  []string
	Err     error
}

// Runner executes reports against a database and writes them as CSV.
type Runner struct {
	db          *sql.DB
	outputDir   string
	concurrency int
	fileManager *common.FileManager
	logger      zerolog.Logger
}

// NewRunner creates a runner. Concurrency below 1 runs reports one at a time.
func NewRunner(db *sql.DB, outputDir string, concurrency int, logger zerolog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	logger = logger.With().Str("component", "ReportRunner").Logger()
	return &Runner{
		db:          db,
		outputDir:   outputDir,
		concurrency: concurrency,
		fileManager: common.NewFileManager(logger),
		logger:      logger,
	}
}

// Run executes every report. A failing report does not stop the others.
func (r *Runner) Run(ctx context.Context, reports []Report) (*Result, error) {
	if err := r.fileManager.EnsureDirectory(r.outputDir, 0755); err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		result    Result
		collector common.ErrorCollector
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, report := range reports {
		report := report
		g.Go(func() error {
			out, err := r.runOne(gctx, report)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Error().Err(err).Str("report", report.Name).Msg("Report failed")
				collector.AddWithContext(err, "report "+report.Name)
				result.Failed = append(result.Failed, report.Name)
				return nil
			}
			result.Outputs = append(result.Outputs, out)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Outputs, func(i, j int) bool { return result.Outputs[i].Name < result.Outputs[j].Name })
	sort.Strings(result.Failed)

	if err := ctx.Err(); err != nil {
		return &result, err
	}
	result.Err = collector.Error()
	r.logger.Info().Int("written", len(result.Outputs)).Int("failed", len(result.Failed)).Msg("Reports finished")
	return &result, nil
}

func (r *Runner) runOne(ctx context.Context, report Report) (Output, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, report.Query)
	if err != nil {
		return Output{}, common.WrapError(err, "query failed")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Output{}, common.WrapError(err, "failed to read columns")
	}

	filePath := filepath.Join(r.outputDir, report.FileName)
	tmpPath := filePath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return Output{}, common.WrapError(err, "failed to create "+tmpPath)
	}
	defer os.Remove(tmpPath)
	defer file.Close()

	w := csv.NewWriter(file)
	header := append([]string{}, columns...)
	for _, d := range report.Derived {
		header = append(header, d.Name)
	}
	if err := w.Write(header); err != nil {
		return Output{}, err
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return Output{}, common.WrapError(err, "failed to scan row")
		}
		record := make([]string, len(columns), len(header))
		named := make(map[string]string, len(columns))
		for i, v := range values {
			record[i] = FormatValue(v)
			named[columns[i]] = record[i]
		}
		for _, d := range report.Derived {
			record = append(record, d.Compute(named))
		}
		if err := w.Write(record); err != nil {
			return Output{}, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return Output{}, common.WrapError(err, "row iteration failed")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return Output{}, common.WrapError(err, "failed to write csv")
	}
	if err := file.Close(); err != nil {
		return Output{}, err
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return Output{}, common.WrapError(err, "failed to move report into place")
	}

	out := Output{Name: report.Name, FilePath: filePath, Rows: count, Duration: time.Since(start)}
	r.logger.Info().Str("report", report.Name).Str("file", filePath).Int("rows", count).Msg("Report written")
	return out, nil
}

// FormatValue renders a scanned SQL value as a CSV cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
