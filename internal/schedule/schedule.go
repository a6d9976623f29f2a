// Package schedule fires collection runs on a cron expression.
package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/warera-analytics/market-history/internal/collector"
)

// Runner executes one collection invocation.
type Runner interface {
	Run(ctx context.Context, trig collector.Trigger) *collector.Result
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the time zone the cron expression is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		s.loc = loc
	}
}

// Scheduler triggers a Runner on every cron firing. Firings are independent:
// a slow run does not delay or skip the next one.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	runner   Runner
	loc      *time.Location
}

// New parses spec (standard five-field syntax or descriptors such as
// "@every 1m") and returns a Scheduler.
func New(spec string, runner Runner, opts ...Option) (*Scheduler, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: parse %q", spec)
	}
	s := &Scheduler{
		spec:     spec,
		schedule: sched,
		runner:   runner,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Spec returns the cron expression used as the trigger label.
func (s *Scheduler) Spec() string {
	return s.spec
}

// Next returns the first firing after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Run blocks until ctx is done, then waits for in-flight runs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := cronLogger{log: zap.L().With(zap.String("component", "schedule"))}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		s.runner.Run(ctx, collector.Trigger{Label: s.spec})
	}))

	c.Start()
	zap.L().Info("schedule: started",
		zap.String("component", "schedule"),
		zap.String("cron", s.spec),
		zap.Time("next", s.Next(time.Now())),
	)

	<-ctx.Done()
	zap.L().Info("schedule: stopping", zap.String("component", "schedule"))
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's internal logging through zap.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
