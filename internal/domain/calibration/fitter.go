package calibration

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/autocal/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Stillness and iteration constants from GGIR's autocalibration.
const (
	// maxStillMeanG bounds |rolling mean| for a sample to count as still.
	// GGIR hard-codes 2 g; kept as-is rather than tuned.
	maxStillMeanG = 2.0

	// initialSampleWeight seeds every still sample before the first round;
	// maxSampleWeight caps the 1/distance reweighting afterwards.
	initialSampleWeight = 100.0
	maxSampleWeight     = 100.0

	// acceptableEndError is the absolute bound the post-fit calibration
	// error must stay under for a fit to be accepted.
	acceptableEndError = 0.01
)

// RejectReason explains why a fit was not accepted.
type RejectReason int

const (
	RejectNone RejectReason = iota
	// RejectSphereUnderpopulated: still samples do not span both sides of
	// every axis beyond the sphere criterion; no iteration was attempted.
	RejectSphereUnderpopulated
	// RejectErrorNotImproved: iteration finished but the acceptance rule
	// (end error below start error and below the absolute bound) failed.
	RejectErrorNotImproved
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectSphereUnderpopulated:
		return "sphere_underpopulated"
	case RejectErrorNotImproved:
		return "error_not_improved"
	}
	return "unknown"
}

// FitReport is the outcome of one closest-point fit over a window.
// Offset and Scale are returned regardless of acceptance; the caller
// decides what to do with a rejected fit.
type FitReport struct {
	Accepted bool
	Offset   [3]float64
	Scale    [3]float64
	ErrStart float64
	ErrEnd   float64

	Reason       RejectReason
	Iterations   int
	StillSamples int
	Residuals    []float64
}

// fitState threads the accumulation between rounds explicitly: running
// offset/scale, per-sample weights and the residual history.
type fitState struct {
	offset    [3]float64
	scale     [3]float64
	weights   []float64
	residuals []float64
}

func newFitState(n int) *fitState {
	st := &fitState{
		scale:   [3]float64{1, 1, 1},
		weights: make([]float64, n),
	}
	for i := range st.weights {
		st.weights[i] = initialSampleWeight
	}
	return st
}

// Fit detects stillness in the window, validates sphere coverage and runs
// the iterative closest-point regression to convergence or failure.
func (c *Calibrator) Fit(ctx context.Context, accel model.Samples, times []time.Time) (FitReport, error) {
	stats, err := c.stats.Rolling(ctx, accel, times, c.statsWindow)
	if err != nil {
		return FitReport{}, fmt.Errorf("rolling statistics: %w", err)
	}

	still := selectStill(stats.Mean, stats.SD, c.sdCrit)

	rep := FitReport{
		Scale:        [3]float64{1, 1, 1},
		StillSamples: still.Len(),
	}

	if !sphereCovered(still, c.sphereCrit) {
		rep.Reason = RejectSphereUnderpopulated
		return rep, nil
	}

	rep.ErrStart = round5(meanAbsNormError(still, [3]float64{1, 1, 1}, [3]float64{}))

	st := newFitState(still.Len())
	c.iterate(still, st, &rep)

	rep.Offset = st.offset
	rep.Scale = st.scale
	rep.Residuals = st.residuals
	rep.ErrEnd = round5(meanAbsNormError(still, st.scale, st.offset))

	if rep.ErrEnd < rep.ErrStart && rep.ErrEnd < acceptableEndError {
		rep.Accepted = true
	} else {
		rep.Reason = RejectErrorNotImproved
	}
	return rep, nil
}

// iterate runs the closest-point rounds, mutating st in place.
//
// Each round applies the running transform, projects onto the unit
// sphere, refits one weighted linear regression per axis, and folds the
// increments into the running parameters as
//
//	scale  <- scaleIncrement * scale
//	offset <- offsetIncrement + offset/scale   (with the updated scale)
//
// The asymmetry between the two accumulations is deliberate: it matches
// GGIR, and changing it changes the numerical output.
func (c *Calibrator) iterate(still model.Samples, st *fitState, rep *FitReport) {
	n := still.Len()
	curr := model.NewSamples(n)
	closest := model.NewSamples(n)
	dist := make([]float64, n)

	for iter := 0; iter < c.maxIter; iter++ {
		rep.Iterations = iter + 1

		for k := 0; k < 3; k++ {
			src := still.Axis(k)
			dst := curr.Axis(k)
			for i := range dst {
				dst[i] = src[i]*st.scale[k] + st.offset[k]
			}
		}

		for i := 0; i < n; i++ {
			norm := math.Sqrt(curr.X[i]*curr.X[i] + curr.Y[i]*curr.Y[i] + curr.Z[i]*curr.Z[i])
			closest.X[i] = curr.X[i] / norm
			closest.Y[i] = curr.Y[i] / norm
			closest.Z[i] = curr.Z[i] / norm
		}

		var offsetInc, scaleInc [3]float64
		for k := 0; k < 3; k++ {
			x := curr.Axis(k)
			alpha, beta := stat.LinearRegression(x, closest.Axis(k), st.weights, false)
			offsetInc[k] = alpha
			scaleInc[k] = beta
			// GGIR replaces the column with slope*x only (no
			// intercept) before measuring the residual.
			for i := range x {
				x[i] = beta * x[i]
			}
		}

		for k := 0; k < 3; k++ {
			st.scale[k] = scaleInc[k] * st.scale[k]
			st.offset[k] = offsetInc[k] + st.offset[k]/st.scale[k]
		}

		sumW := 0.0
		for _, w := range st.weights {
			sumW += w
		}
		total := 0.0
		for i := 0; i < n; i++ {
			dx := curr.X[i] - closest.X[i]
			dy := curr.Y[i] - closest.Y[i]
			dz := curr.Z[i] - closest.Z[i]
			d2 := dx*dx + dy*dy + dz*dz
			total += st.weights[i] * d2
			dist[i] = math.Sqrt(d2)
		}
		// 3 * mean(weight * (curr-closest)^2 / sum(weight)) over the N x 3
		// difference matrix collapses to this.
		residual := total / (sumW * float64(n))

		for i := 0; i < n; i++ {
			st.weights[i] = math.Min(1/dist[i], maxSampleWeight)
		}

		converged := len(st.residuals) > 0 &&
			math.Abs(residual-st.residuals[len(st.residuals)-1]) < c.tol
		st.residuals = append(st.residuals, residual)
		if converged {
			return
		}
	}
}

// selectStill classifies stillness and returns the rolling-mean rows
// where every axis has SD below sdCrit and |mean| below maxStillMeanG.
func selectStill(mean, sd model.Samples, sdCrit float64) model.Samples {
	var still model.Samples
	for i := 0; i < mean.Len(); i++ {
		if sd.X[i] < sdCrit && sd.Y[i] < sdCrit && sd.Z[i] < sdCrit &&
			math.Abs(mean.X[i]) < maxStillMeanG &&
			math.Abs(mean.Y[i]) < maxStillMeanG &&
			math.Abs(mean.Z[i]) < maxStillMeanG {
			still.Append(mean.X[i], mean.Y[i], mean.Z[i])
		}
	}
	return still
}

// sphereCovered reports whether the still samples span both sides of
// every axis beyond crit, i.e. the unit sphere is populated well enough
// for the fit to be determined.
func sphereCovered(still model.Samples, crit float64) bool {
	if still.Len() == 0 {
		return false
	}
	for k := 0; k < 3; k++ {
		col := still.Axis(k)
		lo, hi := col[0], col[0]
		for _, v := range col[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if !(lo < -crit && hi > crit) {
			return false
		}
	}
	return true
}

// meanAbsNormError is the calibration error: the mean absolute deviation
// of the transformed still vectors' norms from 1 g.
func meanAbsNormError(s model.Samples, scale, offset [3]float64) float64 {
	n := s.Len()
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		x := s.X[i]*scale[0] + offset[0]
		y := s.Y[i]*scale[1] + offset[1]
		z := s.Z[i]*scale[2] + offset[2]
		sum += math.Abs(math.Sqrt(x*x+y*y+z*z) - 1)
	}
	return sum / float64(n)
}

// round5 rounds to 5 decimal places, matching how GGIR reports
// calibration error.
func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
