package csvfile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/okian/autocal/internal/domain/calibration"
	"github.com/okian/autocal/internal/domain/model"
)

// Summary is the JSON sidecar written next to a calibrated table. It
// records the transform and the run outcome so downstream steps don't
// have to re-derive them from the samples.
type Summary struct {
	Calibrated bool       `json:"calibrated"`
	Scale      [3]float64 `json:"scale"`
	Offset     [3]float64 `json:"offset"`
	ErrStart   float64    `json:"error_start_g"`
	ErrEnd     float64    `json:"error_end_g"`
	Diagnostic string     `json:"diagnostic,omitempty"`
	Expansions int        `json:"window_expansions"`
	Iterations int        `json:"fit_iterations"`
}

// NewSummary flattens a calibration result into its sidecar form.
func NewSummary(res calibration.Result) Summary {
	s := Summary{
		Calibrated: res.Calibrated,
		Scale:      res.Scale,
		Offset:     res.Offset,
		ErrStart:   res.ErrStart,
		ErrEnd:     res.ErrEnd,
		Expansions: res.Expansions,
		Iterations: res.Iterations,
	}
	if res.Diagnostic != nil {
		s.Diagnostic = res.Diagnostic.Message
	}
	return s
}

// WriteRecording writes the sample table to path in the same column
// layout ReadRecording accepts. Optional columns are emitted only when
// present on the recording.
func WriteRecording(path string, rec model.Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Aux tables follow their own device epochs; only row-aligned ones
	// can share the sample table.
	n := rec.Acceleration.Len()
	withLux := len(rec.Lux) == n && n > 0
	withBattery := len(rec.Battery) == n && n > 0
	withCapSense := len(rec.CapSense) == n && n > 0

	header := []string{colTime, colX, colY, colZ}
	if withLux {
		header = append(header, colLux)
	}
	if withBattery {
		header = append(header, colBattery)
	}
	if withCapSense {
		header = append(header, colCapSense)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 0, len(header))
	for i := 0; i < n; i++ {
		row = row[:0]
		row = append(row,
			rec.Time[i].Format(time.RFC3339Nano),
			formatCell(rec.Acceleration.X[i]),
			formatCell(rec.Acceleration.Y[i]),
			formatCell(rec.Acceleration.Z[i]),
		)
		if withLux {
			row = append(row, formatCell(rec.Lux[i]))
		}
		if withBattery {
			row = append(row, formatCell(rec.Battery[i]))
		}
		if withCapSense {
			row = append(row, formatCell(rec.CapSense[i]))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return f.Close()
}

// WriteSummary writes the JSON sidecar to path.
func WriteSummary(path string, s Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return f.Close()
}

// ReadSummary loads a previously written sidecar.
func ReadSummary(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read summary: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	return s, nil
}

func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
