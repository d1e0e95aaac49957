// Package schedule starts recurring away windows from cron expressions.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/config"
)

// Starter begins an away session; *away.State satisfies it.
type Starter interface {
	StartAway(d time.Duration, now time.Time) time.Time
}

var parser = robfigcron.NewParser(
	robfigcron.Minute | robfigcron.Hour | robfigcron.Dom | robfigcron.Month | robfigcron.Dow | robfigcron.Descriptor,
)

// Window is one parsed recurring away window.
type Window struct {
	Name     string
	Expr     string
	Duration time.Duration
	Location *time.Location
	sched    robfigcron.Schedule
}

// Next returns the first activation after t.
func (w Window) Next(t time.Time) time.Time {
	return w.sched.Next(t.In(w.Location))
}

// ParseWindow validates a configured window.
func ParseWindow(c config.ScheduleConfig) (Window, error) {
	name := c.Name
	if name == "" {
		name = c.Cron
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.Duration))
	if err != nil {
		return Window{}, fmt.Errorf("schedule %q: invalid duration %q: %w", name, c.Duration, err)
	}
	if d < time.Minute {
		return Window{}, fmt.Errorf("schedule %q: duration must be at least 1m", name)
	}
	loc := time.Local
	if c.Timezone != "" {
		if loc, err = time.LoadLocation(c.Timezone); err != nil {
			return Window{}, fmt.Errorf("schedule %q: invalid timezone: %w", name, err)
		}
	}
	sched, err := parser.Parse(strings.TrimSpace(c.Cron))
	if err != nil {
		return Window{}, fmt.Errorf("schedule %q: invalid cron expression: %w", name, err)
	}
	return Window{Name: name, Expr: c.Cron, Duration: d, Location: loc, sched: sched}, nil
}

// Service fires the configured windows against a Starter.
type Service struct {
	robfig  *robfigcron.Cron
	starter Starter
	clock   away.Clock

	mu      sync.Mutex
	windows []Window
}

// NewService creates an idle Service.
func NewService(starter Starter, clock away.Clock) *Service {
	if clock == nil {
		clock = away.SystemClock
	}
	return &Service{
		robfig:  robfigcron.New(robfigcron.WithParser(parser)),
		starter: starter,
		clock:   clock,
	}
}

// Add registers a window. Invalid windows are rejected, not skipped.
func (s *Service) Add(c config.ScheduleConfig) error {
	w, err := ParseWindow(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows, w)
	s.robfig.Schedule(locSchedule{w}, robfigcron.FuncJob(func() { s.fire(w) }))
	slog.Info("schedule: added window", "name", w.Name, "cron", w.Expr, "duration", w.Duration, "tz", w.Location)
	return nil
}

// Windows returns the registered windows.
func (s *Service) Windows() []Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Window(nil), s.windows...)
}

// Start runs the scheduler until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.robfig.Start()
	slog.Info("schedule: started", "windows", len(s.Windows()))
	<-ctx.Done()
	<-s.robfig.Stop().Done()
	return ctx.Err()
}

func (s *Service) fire(w Window) {
	until := s.starter.StartAway(w.Duration, s.clock.Now())
	slog.Info("schedule: away window started", "name", w.Name, "until", until.Format(time.DateTime))
}

// locSchedule evaluates the window in its own time zone.
type locSchedule struct{ w Window }

func (l locSchedule) Next(t time.Time) time.Time { return l.w.Next(t) }
