package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"home_energy/internal/apperr"
	"home_energy/internal/energy"
	"home_energy/internal/ingest"
	"home_energy/internal/logger"
	"home_energy/internal/metrics"
	"home_energy/internal/models"
	"home_energy/internal/repository"
)

// ErrPointsDropped is returned by a realtime run that finished but had to drop
// at least one reading after its retries ran out.
var ErrPointsDropped = errors.New("generator: readings dropped after retries")

// GeneratorService produces synthetic readings and hands them to a sink.
type GeneratorService struct {
	sink    ingest.Submitter
	devices repository.DeviceRepo // optional, resolves the category
	retry   ingest.RetryPolicy
	metrics *metrics.Metrics
	log     *logger.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewGeneratorService returns a generator writing into sink. devices and m may be nil.
func NewGeneratorService(sink ingest.Submitter, devices repository.DeviceRepo, retry ingest.RetryPolicy, m *metrics.Metrics, log *logger.Logger) *GeneratorService {
	if log == nil {
		log = logger.Nop()
	}
	return &GeneratorService{sink: sink, devices: devices, retry: retry, metrics: m, log: log, loc: time.Local, now: time.Now}
}

// InLocation samples category patterns by the wall clock of loc, the
// household zone, whatever zone the requested timestamps carry.
func (s *GeneratorService) InLocation(loc *time.Location) *GeneratorService {
	if loc == nil {
		loc = time.Local
	}
	s.loc = loc
	s.now = newClock(loc)
	return s
}

func validateGenerate(p GenerateParams) error {
	if p.DeviceID <= 0 {
		return apperr.Configuration("device id must be positive, got %d", p.DeviceID)
	}
	if p.Interval <= 0 {
		return apperr.Configuration("interval must be positive, got %s", p.Interval)
	}
	switch p.Mode {
	case ModeHistorical:
		if p.From.IsZero() || p.To.IsZero() {
			return apperr.Configuration("historical mode needs both from and to")
		}
		if p.To.Before(p.From) {
			return apperr.Configuration("to %s is before from %s", p.To.Format(time.RFC3339), p.From.Format(time.RFC3339))
		}
	case ModeRealtime:
		if p.Duration <= 0 {
			return apperr.Configuration("duration must be positive, got %s", p.Duration)
		}
	default:
		return apperr.Configuration("unknown mode %q: use historical or realtime", p.Mode)
	}
	return nil
}

// Generate runs one synthetic series for p.DeviceID. On cancellation the
// partial report is returned together with ctx.Err().
func (s *GeneratorService) Generate(ctx context.Context, sess models.Session, p GenerateParams) (GenerateReport, error) {
	if err := validateGenerate(p); err != nil {
		return GenerateReport{}, err
	}
	cat, err := s.resolveCategory(ctx, sess, p)
	if err != nil {
		return GenerateReport{}, err
	}

	rep := GenerateReport{RunID: uuid.NewString(), DeviceID: p.DeviceID, Mode: p.Mode}
	gen := energy.NewGenerator(p.Seed)
	s.log.Infow("generate_started", "run_id", rep.RunID, "device_id", p.DeviceID, "mode", p.Mode,
		"category", cat, "interval", p.Interval.String())

	if p.Mode == ModeHistorical {
		err = s.historical(ctx, sess, p, cat, gen, &rep)
	} else {
		err = s.realtime(ctx, sess, p, cat, gen, &rep)
	}

	s.log.Infow("generate_finished", "run_id", rep.RunID, "submitted", rep.Submitted,
		"dropped", rep.Dropped, "retries", rep.Retries, "err", err)
	return rep, err
}

func (s *GeneratorService) resolveCategory(ctx context.Context, sess models.Session, p GenerateParams) (models.Category, error) {
	if p.Category != "" {
		c, _ := models.ParseCategory(p.Category)
		return c, nil
	}
	if s.devices == nil {
		return models.CategoryOther, nil
	}
	if err := requireSession(sess); err != nil {
		return "", err
	}
	d, err := s.devices.Get(ctx, sess.AccountID, p.DeviceID)
	if err != nil {
		return "", err
	}
	return d.Category, nil
}

// reading converts an instantaneous draw into energy over one interval.
func (s *GeneratorService) reading(gen energy.Generator, cat models.Category, deviceID int, ts time.Time, interval time.Duration) models.TelemetryReading {
	kwh := gen.Sample(cat, ts.In(s.loc)) * interval.Hours()
	return models.TelemetryReading{
		DeviceID:    deviceID,
		Timestamp:   ts.UTC(),
		EnergyUsage: math.Round(kwh*1e6) / 1e6,
	}
}

func (rep *GenerateReport) record(ts time.Time) {
	if rep.Submitted == 0 {
		rep.FirstAt = ts.UTC()
	}
	rep.LastAt = ts.UTC()
	rep.Submitted++
}

// historical walks [From, To] without pacing and stops at the first failure.
func (s *GeneratorService) historical(ctx context.Context, sess models.Session, p GenerateParams, cat models.Category, gen energy.Generator, rep *GenerateReport) error {
	mode := string(ModeHistorical)
	for ts := p.From; !ts.After(p.To); ts = ts.Add(p.Interval) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.sink.Submit(ctx, sess, s.reading(gen, cat, p.DeviceID, ts, p.Interval)); err != nil {
			return err
		}
		rep.record(ts)
		s.metrics.ReadingSubmitted(mode)
	}
	return nil
}

// realtime emits one reading per tick until Duration elapses or ctx ends.
func (s *GeneratorService) realtime(ctx context.Context, sess models.Session, p GenerateParams, cat models.Category, gen energy.Generator, rep *GenerateReport) error {
	mode := string(ModeRealtime)
	sink := ingest.NewRetrying(s.sink, s.retry, func(err error, wait time.Duration) {
		rep.Retries++
		s.metrics.SubmitRetried(mode)
		s.log.Warnw("submit_retry", "run_id", rep.RunID, "err", err, "wait", wait.String())
	})

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	deadline := time.NewTimer(p.Duration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			if rep.Dropped > 0 {
				return ErrPointsDropped
			}
			return nil
		case <-ticker.C:
			ts := s.now().Truncate(time.Second)
			err := sink.Submit(ctx, sess, s.reading(gen, cat, p.DeviceID, ts, p.Interval))
			switch {
			case err == nil:
				rep.record(ts)
				s.metrics.ReadingSubmitted(mode)
			case ctx.Err() != nil:
				return ctx.Err()
			case apperr.IsTransient(err):
				rep.Dropped++
				s.metrics.ReadingDropped(mode)
				s.log.Errorw("reading_dropped", "run_id", rep.RunID, "device_id", p.DeviceID,
					"timestamp", ts.UTC(), "err", err)
			default:
				return err
			}
		}
	}
}
