package events

import (
	"context"
	"testing"
)

func TestBus_PublishDropsWhenBufferFull(t *testing.T) {
	b := NewBus()
	defer b.Close()

	for i := 0; i < cap(b.events); i++ {
		b.Publish(Event{Type: WaveInserted, Wave: &WavePayload{WaveID: "w", Text: "msg"}})
	}

	b.Publish(Event{Type: WaveInserted, Wave: &WavePayload{WaveID: "w", Text: "overflow"}})
	if b.Dropped() != 1 {
		t.Fatalf("expected dropped count 1, got %d", b.Dropped())
	}
}

func TestBus_ClosedDrainsThenReturnsFalse(t *testing.T) {
	b := NewBus()
	b.Publish(Event{Type: CrystalFormed, Crystal: &CrystalPayload{CrystalID: "c"}})
	b.Close()

	ev, ok := b.Consume(context.Background())
	if !ok || ev.Crystal == nil || ev.Crystal.CrystalID != "c" {
		t.Fatalf("buffered event should survive close, got %+v ok=%v", ev, ok)
	}
	if _, ok := b.Consume(context.Background()); ok {
		t.Fatal("drained closed bus should return ok=false")
	}
}

func TestBus_PublishAfterCloseIsIgnored(t *testing.T) {
	b := NewBus()
	b.Close()

	b.Publish(Event{Type: InsightProduced, Insight: &InsightPayload{Query: "q"}})
	if _, ok := b.Consume(context.Background()); ok {
		t.Fatal("publish after close must not deliver")
	}
}

func TestBus_ConsumeHonorsContext(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := b.Consume(ctx); ok {
		t.Fatal("cancelled context should abort consume")
	}
}
