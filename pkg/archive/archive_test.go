package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := New(filepath.Join(t.TempDir(), "journal", "archive.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRecordExperience_ReplayOrder(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	// Insert out of step order; listing must come back in step order.
	records := []ExperienceRecord{
		{WaveID: "w2", Text: "practiced guitar chords", Step: 2, Amplitude: 0.6, Frequency: 3.2},
		{WaveID: "w0", Text: "morning coffee ritual", Step: 0, Amplitude: 0.55, Frequency: 2.3},
		{WaveID: "w1", Text: "talked with sarah about work", Step: 1, Amplitude: 0.65, Frequency: 4.5, Keywords: []string{"sarah", "work"}},
	}
	for _, rec := range records {
		if err := a.RecordExperience(ctx, rec); err != nil {
			t.Fatalf("RecordExperience(%s): %v", rec.WaveID, err)
		}
	}

	got, err := a.ListExperiences(ctx)
	if err != nil {
		t.Fatalf("ListExperiences: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantOrder := []string{"w0", "w1", "w2"}
	for i, id := range wantOrder {
		if got[i].WaveID != id {
			t.Errorf("order[%d] = %s, want %s", i, got[i].WaveID, id)
		}
	}
	if got[1].Keywords[0] != "sarah" {
		t.Errorf("keywords roundtrip = %v, want [sarah work]", got[1].Keywords)
	}
}

func TestRecordExperience_UpsertUpdatesAmplitude(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	rec := ExperienceRecord{WaveID: "w0", Text: "coffee", Step: 0, Amplitude: 0.5, Frequency: 2.0}
	if err := a.RecordExperience(ctx, rec); err != nil {
		t.Fatalf("RecordExperience: %v", err)
	}
	rec.Amplitude = 0.9
	if err := a.RecordExperience(ctx, rec); err != nil {
		t.Fatalf("RecordExperience rewrite: %v", err)
	}

	got, err := a.ListExperiences(ctx)
	if err != nil {
		t.Fatalf("ListExperiences: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 after upsert", len(got))
	}
	if got[0].Amplitude != 0.9 {
		t.Errorf("Amplitude = %v, want 0.9", got[0].Amplitude)
	}
}

func TestRecordExperience_EmptyID(t *testing.T) {
	a := newTestArchive(t)
	if err := a.RecordExperience(context.Background(), ExperienceRecord{Text: "x"}); err == nil {
		t.Fatal("expected error for empty wave_id")
	}
}

func TestRecordCrystal_DuplicateIgnored(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	rec := CrystalRecord{ID: "c1", Step: 5, Stability: 0.8, Members: []string{"w0", "w1"}, Keywords: []string{"coffee"}}
	if err := a.RecordCrystal(ctx, rec); err != nil {
		t.Fatalf("RecordCrystal: %v", err)
	}
	if err := a.RecordCrystal(ctx, rec); err != nil {
		t.Fatalf("RecordCrystal duplicate: %v", err)
	}

	got, err := a.ListCrystals(ctx)
	if err != nil {
		t.Fatalf("ListCrystals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Stability != 0.8 || len(got[0].Members) != 2 {
		t.Errorf("crystal roundtrip = %+v", got[0])
	}
}

func TestRecordInsight_RecentFirst(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	for i, q := range []string{"what about coffee", "what about guitar"} {
		rec := InsightRecord{
			Query:      q,
			Summary:    "Found 2 resonating patterns in your experience.",
			Confidence: 0.6,
			Collapse:   0.4,
			Evidence:   []string{"e1", "e2"},
		}
		// Distinct timestamps keep the ordering deterministic.
		rec.CreatedAt = time.UnixMilli(int64(1000 + i))
		if err := a.RecordInsight(ctx, rec); err != nil {
			t.Fatalf("RecordInsight: %v", err)
		}
	}

	got, err := a.RecentInsights(ctx, 1)
	if err != nil {
		t.Fatalf("RecentInsights: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Query != "what about guitar" {
		t.Errorf("Query = %q, want newest insight first", got[0].Query)
	}
	if len(got[0].Evidence) != 2 {
		t.Errorf("Evidence = %v, want 2 entries", got[0].Evidence)
	}
}

func TestCountExperiences(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	n, err := a.CountExperiences(ctx)
	if err != nil {
		t.Fatalf("CountExperiences: %v", err)
	}
	if n != 0 {
		t.Errorf("empty count = %d, want 0", n)
	}

	for i := 0; i < 3; i++ {
		rec := ExperienceRecord{WaveID: string(rune('a' + i)), Text: "t", Step: i, Amplitude: 0.5, Frequency: 1}
		if err := a.RecordExperience(ctx, rec); err != nil {
			t.Fatalf("RecordExperience: %v", err)
		}
	}
	n, err = a.CountExperiences(ctx)
	if err != nil {
		t.Fatalf("CountExperiences: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
