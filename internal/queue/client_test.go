package queue

import (
	"context"
	"testing"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/events"
)

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new disabled client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled client should report disabled")
	}
	if err := client.EnqueuePromoterTally(PromoterTallyPayload{PromoterUID: "p-1"}); err != nil {
		t.Fatalf("disabled tally enqueue should be no-op: %v", err)
	}
	if err := client.EnqueueLedgerEvent(LedgerEventPayload{}); err != nil {
		t.Fatalf("disabled event enqueue should be no-op: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() || nilClient.Close() != nil {
		t.Fatalf("nil client should be disabled")
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("default addr want 127.0.0.1:6379 got %s", opt.Addr)
	}
	if cfg.Concurrency != defaultConcurrency || cfg.Queues[CriticalQueue] <= cfg.Queues[DefaultQueue] {
		t.Fatalf("unexpected default server config: %+v", cfg)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{
		Enabled:       true,
		RedisEndpoint: config.RedisEndpoint{Host: "redis", Port: 6380, DB: 2},
		Concurrency:   4,
		Queues:        map[string]int{CriticalQueue: 1},
	})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 4 || len(cfg.Queues) != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

func TestLedgerEventOptionsCarryTaskID(t *testing.T) {
	if got := len(ledgerEventOptions("")); got != 3 {
		t.Fatalf("anonymous event want 3 options got %d", got)
	}
	options := ledgerEventOptions("evt-1")
	if len(options) != 4 || options[3].String() != `TaskID("ledger-event:evt-1")` {
		t.Fatalf("unexpected options: %v", options)
	}
}

func TestSinkPublishesInlineWithoutQueue(t *testing.T) {
	publisher := &recordingPublisher{}
	sink := NewLedgerEventSink(nil, publisher)
	sink.Emit(context.Background(), events.Event{ID: "evt-1", Type: "withdrawal.created"})
	if len(publisher.events) != 1 || publisher.events[0].ID != "evt-1" {
		t.Fatalf("expected inline publish, got %+v", publisher.events)
	}
}
