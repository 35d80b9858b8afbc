package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitForStatus(t *testing.T, job *Job, done ...JobStatus) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		for _, s := range done {
			if snap.Status == s {
				return snap
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish, last status %q", job.ID, job.Snapshot().Status)
	return JobSnapshot{}
}

func TestOrchestrator_RunsSubmittedJobs(t *testing.T) {
	cfg := testConfig(t)
	cfg.BuildWorkers = 2
	cfg.MaxQueueSize = 4

	o := NewOrchestrator(cfg, NewRunner(sampleImporter(t), cfg, discardLogger()), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob(root, testOptions(cfg))
	if err := o.Submit(job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Fatal("expected submitted job to be retrievable")
	}

	snap := waitForStatus(t, job, StatusCompleted, StatusPartial, StatusFailed)
	if snap.Status != StatusCompleted {
		t.Errorf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if o.Stats().Snapshot().Count != 1 {
		t.Error("expected one recorded build")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxQueueSize = 1

	// Not started: nothing drains the queue.
	o := NewOrchestrator(cfg, NewRunner(sampleImporter(t), cfg, discardLogger()), discardLogger())

	if err := o.Submit(NewJob(root, testOptions(cfg))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := NewJob(root, testOptions(cfg))
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %q/%q", snap.Status, snap.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxQueueSize = 2

	o := NewOrchestrator(cfg, NewRunner(sampleImporter(t), cfg, discardLogger()), discardLogger())
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	job := NewJob(root, testOptions(cfg))
	if err := o.Submit(job); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Phase != "shutting_down" {
		t.Errorf("expected failed/shutting_down, got %q/%q", snap.Status, snap.Phase)
	}
}
