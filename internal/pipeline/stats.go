package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// build is one finished build as seen by the stats window.
type build struct {
	root     string
	status   JobStatus
	finished time.Time
	ms       int64
}

// StatsSnapshot aggregates the builds of a window, overall or for one root.
type StatsSnapshot struct {
	Count   int     `json:"count"`
	Failed  int     `json:"failed"`
	Partial int     `json:"partial"`
	MinMs   int64   `json:"min_ms"`
	MaxMs   int64   `json:"max_ms"`
	AvgMs   float64 `json:"avg_ms"`
	P50Ms   float64 `json:"p50_ms"`
	P95Ms   float64 `json:"p95_ms"`
	P99Ms   float64 `json:"p99_ms"`
	// LastStatus is the outcome of the most recent build in the window.
	LastStatus JobStatus `json:"last_status,omitempty"`
}

// BuildStats keeps the builds that finished within maxAge.
type BuildStats struct {
	mu     sync.Mutex
	builds []build
	maxAge time.Duration
}

func NewBuildStats(maxAge time.Duration) *BuildStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &BuildStats{maxAge: maxAge}
}

// Record adds a finished build of root.
func (s *BuildStats) Record(root string, status JobStatus, d time.Duration) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.builds = append(s.builds, build{root: root, status: status, finished: now, ms: max(d.Milliseconds(), 0)})
}

// Snapshot aggregates every build in the window.
func (s *BuildStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(time.Now())
	return summarize(s.builds)
}

// ByRoot aggregates the window per root package.
func (s *BuildStats) ByRoot() map[string]StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(time.Now())
	groups := lo.GroupBy(s.builds, func(b build) string { return b.root })
	return lo.MapValues(groups, func(bs []build, _ string) StatsSnapshot {
		return summarize(bs)
	})
}

func (s *BuildStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	s.builds = slices.DeleteFunc(s.builds, func(b build) bool {
		return b.finished.Before(cutoff)
	})
}

// summarize expects builds in completion order.
func summarize(builds []build) StatsSnapshot {
	if len(builds) == 0 {
		return StatsSnapshot{}
	}

	values := lo.Map(builds, func(b build, _ int) int64 { return b.ms })
	slices.Sort(values)

	return StatsSnapshot{
		Count:      len(values),
		Failed:     lo.CountBy(builds, func(b build) bool { return b.status == StatusFailed }),
		Partial:    lo.CountBy(builds, func(b build) bool { return b.status == StatusPartial }),
		MinMs:      values[0],
		MaxMs:      values[len(values)-1],
		AvgMs:      float64(lo.Sum(values)) / float64(len(values)),
		P50Ms:      percentile(values, 50),
		P95Ms:      percentile(values, 95),
		P99Ms:      percentile(values, 99),
		LastStatus: builds[len(builds)-1].status,
	}
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	i := int(rank)
	if i+1 >= len(sorted) {
		return float64(sorted[i])
	}
	low, high := float64(sorted[i]), float64(sorted[i+1])
	return low + (high-low)*(rank-float64(i))
}
