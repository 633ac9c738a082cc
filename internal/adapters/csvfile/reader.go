// Package csvfile reads and writes recordings as CSV tables with a JSON
// calibration summary sidecar. The on-disk layout is one row per sample:
//
//	time,accel_x,accel_y,accel_z[,lux,battery,cap_sense]
//
// with RFC 3339 timestamps. Optional columns are detected from the
// header and preserved through a read/write round trip.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/okian/autocal/internal/domain/model"
)

// Required and optional column names, in on-disk order.
const (
	colTime     = "time"
	colX        = "accel_x"
	colY        = "accel_y"
	colZ        = "accel_z"
	colLux      = "lux"
	colBattery  = "battery"
	colCapSense = "cap_sense"
)

// ReadRecording loads a recording from path. When rate is positive it is
// taken as the sampling rate; when zero the rate is inferred from the
// first and last timestamps.
func ReadRecording(path string, rate float64) (model.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Recording{}, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	rec, err := readRecording(f, rate)
	if err != nil {
		return model.Recording{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

func readRecording(r io.Reader, rate float64) (model.Recording, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return model.Recording{}, fmt.Errorf("%w: %v", ErrEmptyFile, err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return model.Recording{}, err
	}

	rec := model.Recording{SamplingRate: rate}
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Recording{}, fmt.Errorf("row %d: %w", row, err)
		}
		row++

		ts, err := time.Parse(time.RFC3339Nano, record[cols.time])
		if err != nil {
			return model.Recording{}, fmt.Errorf("%w: row %d: %v", ErrTimestamp, row, err)
		}
		x, y, z, err := parseAxes(record, cols)
		if err != nil {
			return model.Recording{}, fmt.Errorf("row %d: %w", row, err)
		}

		rec.Time = append(rec.Time, ts)
		rec.Acceleration.Append(x, y, z)
		if cols.lux >= 0 {
			v, err := parseCell(record[cols.lux])
			if err != nil {
				return model.Recording{}, fmt.Errorf("row %d: %w", row, err)
			}
			rec.Lux = append(rec.Lux, v)
		}
		if cols.battery >= 0 {
			v, err := parseCell(record[cols.battery])
			if err != nil {
				return model.Recording{}, fmt.Errorf("row %d: %w", row, err)
			}
			rec.Battery = append(rec.Battery, v)
		}
		if cols.capSense >= 0 {
			v, err := parseCell(record[cols.capSense])
			if err != nil {
				return model.Recording{}, fmt.Errorf("row %d: %w", row, err)
			}
			rec.CapSense = append(rec.CapSense, v)
		}
	}

	if rec.Acceleration.Len() == 0 {
		return model.Recording{}, ErrEmptyFile
	}
	if rec.SamplingRate <= 0 {
		rec.SamplingRate = inferRate(rec.Time)
	}
	return rec, nil
}

// columns holds resolved header indexes; optional columns are -1 when
// absent.
type columns struct {
	time, x, y, z          int
	lux, battery, capSense int
}

func mapColumns(header []string) (columns, error) {
	cols := columns{time: -1, x: -1, y: -1, z: -1, lux: -1, battery: -1, capSense: -1}
	for i, name := range header {
		switch name {
		case colTime:
			cols.time = i
		case colX:
			cols.x = i
		case colY:
			cols.y = i
		case colZ:
			cols.z = i
		case colLux:
			cols.lux = i
		case colBattery:
			cols.battery = i
		case colCapSense:
			cols.capSense = i
		}
	}
	if cols.time < 0 || cols.x < 0 || cols.y < 0 || cols.z < 0 {
		return cols, fmt.Errorf("%w: need %s,%s,%s,%s; got %v", ErrHeader, colTime, colX, colY, colZ, header)
	}
	return cols, nil
}

func parseAxes(record []string, cols columns) (x, y, z float64, err error) {
	if x, err = parseCell(record[cols.x]); err != nil {
		return
	}
	if y, err = parseCell(record[cols.y]); err != nil {
		return
	}
	z, err = parseCell(record[cols.z])
	return
}

func parseCell(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrValue, s)
	}
	return v, nil
}

// inferRate estimates samples per second from the recording's span.
func inferRate(times []time.Time) float64 {
	if len(times) < 2 {
		return 0
	}
	span := times[len(times)-1].Sub(times[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(times)-1) / span
}
