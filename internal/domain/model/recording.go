// Package model contains domain containers passed between layers.
package model

import "time"

// Samples is a triaxial acceleration table in units of gravitational
// acceleration (g). Column order is fixed (X, Y, Z) and preserved through
// every transform; the three slices always have equal length.
type Samples struct {
	X []float64
	Y []float64
	Z []float64
}

// NewSamples allocates a zeroed table with n rows.
func NewSamples(n int) Samples {
	return Samples{
		X: make([]float64, n),
		Y: make([]float64, n),
		Z: make([]float64, n),
	}
}

// Len returns the number of rows.
func (s Samples) Len() int {
	return len(s.X)
}

// Axis returns the column for axis k (0=X, 1=Y, 2=Z). The returned slice
// shares backing storage with the table.
func (s Samples) Axis(k int) []float64 {
	switch k {
	case 0:
		return s.X
	case 1:
		return s.Y
	case 2:
		return s.Z
	}
	panic("model: axis index out of range")
}

// Head returns the leading n rows as a view sharing backing storage.
func (s Samples) Head(n int) Samples {
	return Samples{X: s.X[:n], Y: s.Y[:n], Z: s.Z[:n]}
}

// Clone returns a deep copy of the table.
func (s Samples) Clone() Samples {
	out := NewSamples(s.Len())
	copy(out.X, s.X)
	copy(out.Y, s.Y)
	copy(out.Z, s.Z)
	return out
}

// Append adds one row.
func (s *Samples) Append(x, y, z float64) {
	s.X = append(s.X, x)
	s.Y = append(s.Y, y)
	s.Z = append(s.Z, z)
}

// Recording pairs raw triaxial acceleration with its time sequence and
// sampling rate. Row counts of Acceleration and Time always match; the
// auxiliary sensor tables are forwarded untouched by calibration and may
// be nil or of a different length (they follow the device's own epochs).
type Recording struct {
	Acceleration Samples
	Time         []time.Time
	SamplingRate float64 // Hz

	// Auxiliary sensor tables, passed through unchanged.
	Lux      []float64
	Battery  []float64
	CapSense []float64
}

// Hours returns the recording span implied by the sample count and rate.
func (r Recording) Hours() float64 {
	if r.SamplingRate <= 0 {
		return 0
	}
	return float64(r.Acceleration.Len()) / (r.SamplingRate * 3600)
}
