package pipeline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBuildStats_Percentiles(t *testing.T) {
	stats := NewBuildStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(root, StatusCompleted, time.Duration(ms)*time.Millisecond)
	}

	snap := stats.Snapshot()
	want := StatsSnapshot{
		Count:      5,
		MinMs:      100,
		MaxMs:      500,
		AvgMs:      300,
		P50Ms:      300,
		P95Ms:      480,
		P99Ms:      496,
		LastStatus: StatusCompleted,
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildStats_ByRoot(t *testing.T) {
	stats := NewBuildStats(time.Hour)
	stats.Record("example.com/a", StatusCompleted, 100*time.Millisecond)
	stats.Record("example.com/a", StatusPartial, 300*time.Millisecond)
	stats.Record("example.com/b", StatusFailed, 50*time.Millisecond)

	all := stats.Snapshot()
	if all.Count != 3 || all.Failed != 1 || all.Partial != 1 {
		t.Errorf("expected 3 builds with 1 failed and 1 partial, got %+v", all)
	}
	if all.LastStatus != StatusFailed {
		t.Errorf("expected last status failed, got %q", all.LastStatus)
	}

	byRoot := stats.ByRoot()
	if len(byRoot) != 2 {
		t.Fatalf("expected 2 roots, got %v", byRoot)
	}
	a := byRoot["example.com/a"]
	if a.Count != 2 || a.AvgMs != 200 || a.LastStatus != StatusPartial {
		t.Errorf("unexpected stats for a: %+v", a)
	}
	if b := byRoot["example.com/b"]; b.Count != 1 || b.Failed != 1 || b.MaxMs != 50 {
		t.Errorf("unexpected stats for b: %+v", b)
	}
}

func TestBuildStats_PrunesExpiredBuilds(t *testing.T) {
	stats := NewBuildStats(10 * time.Millisecond)
	stats.Record(root, StatusCompleted, 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}
	if len(stats.ByRoot()) != 0 {
		t.Error("expected no roots after prune")
	}

	stats.Record(root, StatusCompleted, 200*time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected one build of 200ms, got %+v", snap)
	}
}

func TestBuildStats_ClampsNegativeDuration(t *testing.T) {
	stats := NewBuildStats(time.Hour)
	stats.Record(root, StatusCompleted, -time.Second)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected one clamped build, got %+v", snap)
	}
}

func TestPercentileEdges(t *testing.T) {
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("expected 0 for no builds, got %f", got)
	}
	values := []int64{10, 20}
	if got := percentile(values, 0); got != 10 {
		t.Errorf("expected p0=10, got %f", got)
	}
	if got := percentile(values, 100); got != 20 {
		t.Errorf("expected p100=20, got %f", got)
	}
	if got := percentile([]int64{7}, 95); got != 7 {
		t.Errorf("expected single build, got %f", got)
	}
}
