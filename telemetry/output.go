package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/ink/config"
)

// csvFile appends records to one CSV file, writing the header with the first row.
type csvFile struct {
	f       *os.File
	started bool
}

func (c *csvFile) write(records any) error {
	var err error
	if !c.started {
		err = gocsv.Marshal(records, c.f)
		c.started = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.f)
	}
	return err
}

// OutputManager writes a run's stats to a directory: steps.csv, perf.csv and a
// config.yaml snapshot.
type OutputManager struct {
	dir   string
	steps csvFile
	perf  csvFile
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

	om := &OutputManager{dir: dir}
	var err error
	if om.steps.f, err = os.Create(filepath.Join(dir, "steps.csv")); err != nil {
		return nil, fmt.Errorf("creating steps.csv: %w", err)
	}
	if om.perf.f, err = os.Create(filepath.Join(dir, "perf.csv")); err != nil {
		om.steps.f.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	return om, nil
}

// WriteConfig saves the configuration the run used.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteSteps appends a window record to steps.csv.
func (om *OutputManager) WriteSteps(stats StepStats) error {
	if om == nil {
		return nil
	}
	if err := om.steps.write([]StepStats{stats}); err != nil {
		return fmt.Errorf("writing steps: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes both CSV files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(closeFile(om.steps.f), closeFile(om.perf.f))
}

func closeFile(f *os.File) error {
	if f == nil {
		return nil
	}
	return f.Close()
}
