package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/buyv-ledger/internal/config"
)

type recordingService struct {
	name    string
	startFn func(ctx context.Context) error
	log     *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Start(ctx context.Context) error {
	if s.startFn != nil {
		return s.startFn(ctx)
	}
	<-ctx.Done()
	return nil
}

func (s *recordingService) Stop(ctx context.Context) error {
	s.log.add("stop:" + s.name)
	return nil
}

func TestRunnerStopsInReverseAndRunsClosers(t *testing.T) {
	log := &eventLog{}
	runner := NewRunner(
		&recordingService{name: "http", log: log},
		&recordingService{name: "reconcile", log: log},
	)
	runner.OnShutdown(func(context.Context) error {
		log.add("close:tracing")
		return nil
	})
	runner.OnShutdown(func(context.Context) error {
		log.add("close:container")
		return errors.New("ignored")
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("canceled run should return nil, got %v", err)
	}

	want := []string{"stop:reconcile", "stop:http", "close:container", "close:tracing"}
	got := log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v got %v", want, got)
		}
	}
}

func TestRunnerReturnsServiceError(t *testing.T) {
	log := &eventLog{}
	boom := errors.New("listen tcp :8080: bind: address already in use")
	runner := NewRunner(&recordingService{
		name:    "http",
		log:     log,
		startFn: func(context.Context) error { return boom },
	})
	if err := runner.Run(context.Background(), time.Second, nil); !errors.Is(err, boom) {
		t.Fatalf("want start error got %v", err)
	}
	if got := log.snapshot(); len(got) != 1 || got[0] != "stop:http" {
		t.Fatalf("service should still be stopped, got %v", got)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, "API": ModeAPI, " worker ": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) want %s got %s err=%v", raw, want, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestNormalizeOptionsShutdownTimeout(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.ShutdownTimeoutSeconds = 3
	opts := normalizeOptions(Options{Config: cfg})
	if opts.ShutdownTimeout != 3*time.Second || opts.Mode != ModeAll || opts.Logger == nil {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if got := normalizeOptions(Options{}).ShutdownTimeout; got != 10*time.Second {
		t.Fatalf("default shutdown timeout want 10s got %s", got)
	}
}
