// Package calibration implements GGIR-style autocalibration of raw
// triaxial accelerometer data: still periods are detected with rolling
// statistics, and an iterative closest-point fit against the unit gravity
// sphere estimates a per-axis affine transform (scale and offset).
package calibration

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/autocal/internal/domain/model"
	"github.com/okian/autocal/internal/domain/rollstats"
	"github.com/okian/autocal/pkg/logger"
)

// Default calibration configuration constants.
const (
	defaultSphereCriterion = 0.3   // g, per-axis sphere coverage bound
	defaultMinHours        = 72    // initial fit window, hours
	defaultStillCriterion  = 0.013 // g, rolling-SD stillness bound (GeneActiv)
	defaultMaxIterations   = 1000
	defaultTolerance       = 1e-10
	defaultStatsWindowSecs = 10.0

	// expansionBlockHours is the fixed step by which the fit window grows
	// when a fit is rejected and more data remains.
	expansionBlockHours = 12

	secondsPerHour = 3600
)

// DiagnosticCode classifies the advisory outcomes of a run.
type DiagnosticCode int

const (
	// DiagDataInsufficient: fewer than minHours of samples exist at all;
	// calibration was skipped.
	DiagDataInsufficient DiagnosticCode = iota + 1
	// DiagCalibrationInvalid: no window up to the full dataset produced
	// an accepted fit.
	DiagCalibrationInvalid
)

func (c DiagnosticCode) String() string {
	switch c {
	case DiagDataInsufficient:
		return "data_insufficient"
	case DiagCalibrationInvalid:
		return "calibration_invalid"
	}
	return "unknown"
}

// Diagnostic is a non-fatal advisory attached to an uncalibrated Result.
type Diagnostic struct {
	Code    DiagnosticCode
	Message string
}

// Result is the sole externally visible artifact of a calibration run.
// Acceleration and Time are always full length so they align 1:1 with the
// original recording regardless of which prefix was used for fitting.
type Result struct {
	Acceleration model.Samples // calibrated, or raw when Calibrated is false
	Time         []time.Time
	SamplingRate float64

	Scale  [3]float64 // zero when calibration was skipped or invalid
	Offset [3]float64

	ErrStart float64
	ErrEnd   float64

	Calibrated bool
	Diagnostic *Diagnostic // nil when Calibrated

	// Fit shape, for observability.
	Expansions   int // 12-hour blocks added beyond the initial window
	Iterations   int // closest-point rounds used by the accepting fit
	StillSamples int // still rows feeding the accepting fit

	// Auxiliary sensor tables forwarded unchanged.
	Lux      []float64
	Battery  []float64
	CapSense []float64
}

// Calibrator owns the data-sufficiency policy and the expanding-window
// retry loop around the closest-point fitter.
type Calibrator struct {
	sphereCrit  float64
	minHours    int
	sdCrit      float64
	maxIter     int
	tol         float64
	statsWindow float64

	stats rollstats.Provider
	log   logger.Logger
}

// New constructs a Calibrator with GGIR defaults.
func New(opts ...Option) *Calibrator {
	c := &Calibrator{
		sphereCrit:  defaultSphereCriterion,
		minHours:    defaultMinHours,
		sdCrit:      defaultStillCriterion,
		maxIter:     defaultMaxIterations,
		tol:         defaultTolerance,
		statsWindow: defaultStatsWindowSecs,
		stats:       rollstats.NewSliding(),
		log:         logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Calibrate runs the full procedure on a recording. The returned error is
// non-nil only for malformed input; statistical outcomes (too little
// data, no acceptable fit) come back as an uncalibrated Result carrying a
// Diagnostic.
//
// The fit window starts at minHours of samples and grows in 12-hour
// blocks until a fit is accepted or the window covers the whole dataset.
// On acceptance the affine transform is applied once to the entire
// original table; the raw input is never mutated.
func (c *Calibrator) Calibrate(ctx context.Context, rec model.Recording) (Result, error) {
	n := rec.Acceleration.Len()
	if len(rec.Time) != n {
		return Result{}, fmt.Errorf("%w: %d acceleration rows, %d timestamps", ErrRowCountMismatch, n, len(rec.Time))
	}
	if rec.SamplingRate <= 0 {
		return Result{}, fmt.Errorf("%w: got %v", ErrSamplingRate, rec.SamplingRate)
	}
	for i := 1; i < n; i++ {
		if rec.Time[i].Before(rec.Time[i-1]) {
			return Result{}, fmt.Errorf("%w: row %d precedes row %d", ErrTimeOrder, i, i-1)
		}
	}

	res := Result{
		Acceleration: rec.Acceleration,
		Time:         rec.Time,
		SamplingRate: rec.SamplingRate,
		Lux:          rec.Lux,
		Battery:      rec.Battery,
		CapSense:     rec.CapSense,
	}

	nh := int(float64(c.minHours) * secondsPerHour * rec.SamplingRate)
	n12h := int(expansionBlockHours * secondsPerHour * rec.SamplingRate)

	if n < nh {
		msg := fmt.Sprintf("less than %d hours of data (%.2f hours); no calibration performed",
			c.minHours, rec.Hours())
		c.log.Warn(ctx, "calibration skipped", logger.String("diagnostic", msg))
		res.Diagnostic = &Diagnostic{Code: DiagDataInsufficient, Message: msg}
		return res, nil
	}

	for i := 0; ; i++ {
		end := nh + i*n12h
		window := end
		if window > n {
			window = n
		}

		rep, err := c.Fit(ctx, rec.Acceleration.Head(window), rec.Time[:window])
		if err != nil {
			return Result{}, fmt.Errorf("fit over leading %d samples: %w", window, err)
		}

		if rep.Accepted {
			res.Acceleration = Apply(rec.Acceleration, rep.Scale, rep.Offset)
			res.Scale = rep.Scale
			res.Offset = rep.Offset
			res.ErrStart = rep.ErrStart
			res.ErrEnd = rep.ErrEnd
			res.Calibrated = true
			res.Expansions = i
			res.Iterations = rep.Iterations
			res.StillSamples = rep.StillSamples
			return res, nil
		}

		if end >= n {
			// Hour range reported the way GGIR words it, lower bound
			// included.
			msg := fmt.Sprintf("calibration not done with %d - %d hours due to insufficient non-movement data available",
				c.minHours+(i-1)*expansionBlockHours, c.minHours+i*expansionBlockHours)
			c.log.Warn(ctx, "calibration invalid",
				logger.String("diagnostic", msg),
				logger.String("reason", rep.Reason.String()),
				logger.Int("stillSamples", rep.StillSamples),
			)
			res.Diagnostic = &Diagnostic{Code: DiagCalibrationInvalid, Message: msg}
			res.Expansions = i
			return res, nil
		}

		c.log.Debug(ctx, "fit rejected; expanding window",
			logger.Int("round", i),
			logger.String("reason", rep.Reason.String()),
			logger.Int("windowSamples", window),
		)
	}
}
