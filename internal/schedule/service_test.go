package schedule

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/config"
)

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow(config.ScheduleConfig{Name: "evenings", Cron: "0 18 * * 1-5", Duration: "14h", Timezone: "UTC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Friday 2026-05-01 10:00 UTC → same day 18:00.
	next := w.Next(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	if want := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
	// Friday 19:00 → Monday 18:00.
	next = w.Next(time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC))
	if want := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestParseWindow_Timezone(t *testing.T) {
	w, err := ParseWindow(config.ScheduleConfig{Cron: "0 9 * * *", Duration: "1h", Timezone: "Asia/Riyadh"})
	if err != nil {
		t.Fatal(err)
	}
	// 09:00 in Riyadh (UTC+3) is 06:00 UTC.
	next := w.Next(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	if want := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next.UTC(), want)
	}
	if w.Name != "0 9 * * *" {
		t.Errorf("unnamed windows use the expression, got %q", w.Name)
	}
}

func TestParseWindow_Invalid(t *testing.T) {
	for _, c := range []config.ScheduleConfig{
		{Cron: "not cron", Duration: "1h"},
		{Cron: "0 9 * * *", Duration: "soon"},
		{Cron: "0 9 * * *", Duration: "30s"},
		{Cron: "0 9 * * *", Duration: "1h", Timezone: "Mars/Olympus"},
	} {
		if _, err := ParseWindow(c); err == nil {
			t.Errorf("%+v: expected error", c)
		}
	}
}

func TestFire_StartsAwaySession(t *testing.T) {
	now := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	st := away.NewState(away.Options{})
	svc := NewService(st, away.ClockFunc(func() time.Time { return now }))
	if err := svc.Add(config.ScheduleConfig{Name: "evenings", Cron: "@daily", Duration: "90m"}); err != nil {
		t.Fatal(err)
	}
	if len(svc.Windows()) != 1 {
		t.Fatalf("expected 1 window, got %d", len(svc.Windows()))
	}

	svc.fire(svc.Windows()[0])
	snap := st.Snapshot()
	if !snap.IsAway || !snap.AwayUntil.Equal(now.Add(90*time.Minute)) {
		t.Errorf("expected away until %v, got %+v", now.Add(90*time.Minute), snap)
	}
}

func TestAdd_RejectsInvalid(t *testing.T) {
	svc := NewService(away.NewState(away.Options{}), nil)
	if err := svc.Add(config.ScheduleConfig{Cron: "bad", Duration: "1h"}); err == nil {
		t.Error("expected error")
	}
	if len(svc.Windows()) != 0 {
		t.Error("invalid window must not be registered")
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	svc := NewService(away.NewState(away.Options{}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
