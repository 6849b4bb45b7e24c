package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/boids/config"
)

// csvFile appends gocsv records to one file, writing the header once.
type csvFile[T any] struct {
	name          string
	f             *os.File
	headerWritten bool
}

func createCSV[T any](dir, name string) (*csvFile[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile[T]{name: name, f: f}, nil
}

func (c *csvFile[T]) write(rec T) error {
	records := []T{rec}
	var err error
	if !c.headerWritten {
		err = gocsv.Marshal(records, c.f)
		c.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

func (c *csvFile[T]) close() error {
	if c == nil || c.f == nil {
		return nil
	}
	return c.f.Close()
}

// OutputManager writes run output: telemetry.csv, perf.csv, bookmarks.csv
// and a config.yaml snapshot.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir       string
	telemetry *csvFile[WindowStats]
	perf      *csvFile[PerfStatsCSV]
	bookmarks *csvFile[Bookmark]
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	telemetry, err := createCSV[WindowStats](dir, "telemetry.csv")
	if err != nil {
		return nil, err
	}
	perf, err := createCSV[PerfStatsCSV](dir, "perf.csv")
	if err != nil {
		telemetry.close()
		return nil, err
	}
	bookmarks, err := createCSV[Bookmark](dir, "bookmarks.csv")
	if err != nil {
		telemetry.close()
		perf.close()
		return nil, err
	}

	return &OutputManager{dir: dir, telemetry: telemetry, perf: perf, bookmarks: bookmarks}, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write(stats)
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(row PerfStatsCSV) error {
	if om == nil {
		return nil
	}
	return om.perf.write(row)
}

// WriteBookmark appends a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write(b)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	if err := om.telemetry.close(); err != nil {
		firstErr = err
	}
	if err := om.perf.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := om.bookmarks.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
