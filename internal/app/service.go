// Package service wires discovery, deduplication, the job queue, the
// worker pool and the calibrator into one batch run.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/autocal/internal/adapters/batch"
	"github.com/okian/autocal/internal/adapters/csvfile"
	"github.com/okian/autocal/internal/adapters/repository"
	"github.com/okian/autocal/internal/domain/calibration"
	"github.com/okian/autocal/internal/domain/dedupe"
	"github.com/okian/autocal/internal/domain/model"
	"github.com/okian/autocal/pkg/logger"
	"github.com/okian/autocal/pkg/metrics"
)

// Service runs batch calibration over a set of input recordings.
type Service struct {
	calibrator *calibration.Calibrator
	store      repository.Store
	deduper    dedupe.Deduper

	workerCount  int
	queueSize    int
	dedupeSize   int
	outputDir    string
	samplingRate float64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of calibration workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the duplicate-input cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithOutputDir sets where calibrated tables and sidecars are written.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithSamplingRate fixes the input sampling rate in Hz. Zero infers the
// rate from each file's timestamps.
func WithSamplingRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.samplingRate = rate
		}
	}
}

// WithCalibrator replaces the default calibrator.
func WithCalibrator(c *calibration.Calibrator) Option {
	return func(s *Service) {
		if c != nil {
			s.calibrator = c
		}
	}
}

// WithStore replaces the default in-memory outcome store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  50000,
		outputDir:   "out",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.calibrator == nil {
		s.calibrator = calibration.New()
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemory(dedupe.WithMaxSize(s.dedupeSize))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Run expands the input patterns, fans the recordings out to the worker
// pool and returns the per-recording outcomes worst-first. A non-nil
// error means the run could not start; per-recording failures are
// reported through the outcomes.
func (s *Service) Run(ctx context.Context, patterns []string) ([]repository.Outcome, error) {
	paths, err := expand(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoInputs, patterns)
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	runID := uuid.NewString()
	log := s.logger.Named(runID[:8])
	log.Info(ctx, "run starting",
		logger.Int("inputs", len(paths)),
		logger.Int("workers", s.workerCount),
		logger.String("outputDir", s.outputDir),
	)

	queue := batch.NewInMemoryQueue(batch.WithCapacity(s.queueSize))
	pool := batch.NewPool(queue, s,
		batch.WithWorkers(s.workerCount),
		batch.WithPoolLogger(log),
	)
	pool.Start(ctx)

	for _, path := range paths {
		if s.deduper.SeenAndRecord(ctx, path) {
			metrics.RecordDuplicateInput()
			log.Debug(ctx, "duplicate input skipped", logger.String("path", path))
			continue
		}
		job := batch.Job{ID: uuid.NewString(), Path: path}
		if !queue.Enqueue(ctx, job) {
			s.deduper.Unrecord(ctx, path)
			log.Warn(ctx, "queue refused job", logger.String("path", path))
		}
	}

	_ = queue.Close()
	pool.Wait()

	outcomes, err := s.store.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize run: %w", err)
	}
	log.Info(ctx, "run finished", logger.Int("outcomes", len(outcomes)))
	return outcomes, nil
}

// Process handles one job: read, calibrate, persist, record. It is the
// pool's Runner.
func (s *Service) Process(ctx context.Context, j batch.Job) error {
	start := time.Now()
	out := repository.Outcome{JobID: j.ID, Path: j.Path}

	defer func() {
		out.Duration = time.Since(start)
		metrics.ObserveRecordingDuration(out.Duration.Seconds())
		if err := s.store.Record(ctx, out); err != nil {
			s.logger.Error(ctx, "record outcome", logger.Error(err))
		}
	}()

	rec, err := csvfile.ReadRecording(j.Path, s.samplingRate)
	if err != nil {
		out.Err = err.Error()
		return fmt.Errorf("read recording: %w", err)
	}
	out.Samples = rec.Acceleration.Len()

	res, err := s.calibrator.Calibrate(ctx, rec)
	if err != nil {
		out.Err = err.Error()
		return fmt.Errorf("calibrate: %w", err)
	}

	out.Calibrated = res.Calibrated
	out.Scale = res.Scale
	out.Offset = res.Offset
	out.ErrStart = res.ErrStart
	out.ErrEnd = res.ErrEnd
	if res.Diagnostic != nil {
		out.Diagnostic = res.Diagnostic.Message
	}

	if res.Calibrated {
		metrics.RecordFitAccepted()
		metrics.ObserveFitIterations(res.Iterations)
		metrics.ObserveWindowExpansions(res.Expansions)
		metrics.UpdateStillSamples(res.StillSamples)
		metrics.UpdateCalibrationError(res.ErrStart, res.ErrEnd)
	} else {
		metrics.RecordFitRejected(res.Diagnostic.Code.String())
	}

	if err := s.writeOutputs(j.Path, res); err != nil {
		out.Err = err.Error()
		return err
	}

	metrics.RecordRecordingProcessed()
	return nil
}

// writeOutputs persists the calibrated table and its JSON sidecar next
// to each other in the output directory.
func (s *Service) writeOutputs(inputPath string, res calibration.Result) error {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	table := filepath.Join(s.outputDir, base+".calibrated.csv")
	if err := csvfile.WriteRecording(table, resultRecording(res)); err != nil {
		return fmt.Errorf("write calibrated table: %w", err)
	}

	sidecar := filepath.Join(s.outputDir, base+".calibration.json")
	if err := csvfile.WriteSummary(sidecar, csvfile.NewSummary(res)); err != nil {
		return fmt.Errorf("write summary sidecar: %w", err)
	}
	return nil
}

// resultRecording reshapes a calibration result into the writable table
// form, auxiliary columns included.
func resultRecording(res calibration.Result) model.Recording {
	return model.Recording{
		Acceleration: res.Acceleration,
		Time:         res.Time,
		SamplingRate: res.SamplingRate,
		Lux:          res.Lux,
		Battery:      res.Battery,
		CapSense:     res.CapSense,
	}
}

// expand resolves glob patterns into a sorted, de-duplicated path list.
// A pattern with no matches is skipped; a literal path is kept as-is so
// missing files surface as per-job read failures.
func expand(patterns []string) ([]string, error) {
	seen := map[string]struct{}{}
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, pattern, err)
		}
		if matches == nil && !strings.ContainsAny(pattern, "*?[") {
			matches = []string{pattern}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
