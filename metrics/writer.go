package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type RunRecord struct {
	ID    int
	Gamma float64
	SolveMetric
}

type SweepRecord struct {
	Run    int // RunRecord.ID
	Sweep  int
	Change float64
}

type UtilityRecord struct {
	Run     int // RunRecord.ID
	State   string
	Utility float64
	Action  string // Empty for terminal states
}

type Writer struct {
	baseDir string
}

// NewWriter creates a fresh output directory root/name/<timestamp>.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405.000000000Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteRuns(records []RunRecord) error {
	header := []string{"id", "method", "gamma", "goroutines", "sweeps", "rounds", "final_change", "converged", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.Method,
			formatFloat(record.Gamma),
			strconv.Itoa(record.Goroutines),
			strconv.Itoa(record.Sweeps),
			strconv.Itoa(record.Rounds),
			formatFloat(record.FinalChange()),
			strconv.FormatBool(record.Converged),
			record.Duration.String(),
		})
	}
	return w.write("runs.csv", header, rows)
}

func (w *Writer) WriteSweeps(records []SweepRecord) error {
	header := []string{"run", "sweep", "change"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Run),
			strconv.Itoa(record.Sweep),
			formatFloat(record.Change),
		})
	}
	return w.write("sweeps.csv", header, rows)
}

func (w *Writer) WriteUtilities(records []UtilityRecord) error {
	header := []string{"run", "state", "utility", "action"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Run),
			record.State,
			formatFloat(record.Utility),
			record.Action,
		})
	}
	return w.write("utilities.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}

	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
