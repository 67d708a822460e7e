package service

import (
	"context"

	"github.com/buyv-ledger/internal/events"
)

// EventSink 账本事件出口，提交事务后调用
type EventSink interface {
	Emit(ctx context.Context, event events.Event)
}

func emitEvents(ctx context.Context, sink EventSink, evs ...events.Event) {
	if sink == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for _, ev := range evs {
		sink.Emit(ctx, ev)
	}
}
