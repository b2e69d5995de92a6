package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/healthlang/ilera/schema"
)

func TestRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	r.Record(ctx, schema.HistoryRecord{
		RequestID: "r1", UserID: "u-1", Query: "what is malaria",
		ResponseText: "Malaria is caused by parasites.", Lang: "en",
		SafetyLevel: "none", Sources: []string{"WHO", "tools:pubmed"},
		Success: true, LatencyMS: 120,
	})
	r.Record(ctx, schema.HistoryRecord{RequestID: "r2", Query: "kini àtọ̀gbẹ", Lang: "yo", SafetyLevel: "caution", Success: true, LatencyMS: 300})

	recs, err := r.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0].RequestID != "r2" {
		t.Fatalf("newest first expected, got %+v", recs[0])
	}
	if recs[1].Query != "what is malaria" {
		t.Fatalf("unexpected row: %+v", recs[1])
	}
	if recs[1].UserID != "u-1" || recs[1].ResponseText != "Malaria is caused by parasites." {
		t.Fatalf("response fields not persisted: %+v", recs[1])
	}
	if len(recs[1].Sources) != 2 || recs[1].Sources[0] != "WHO" {
		t.Fatalf("sources not persisted: %v", recs[1].Sources)
	}
	if len(recs[0].Sources) != 0 {
		t.Fatalf("empty sources should round-trip empty, got %v", recs[0].Sources)
	}
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	r.Record(context.Background(), schema.HistoryRecord{RequestID: "x"})
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
