package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/splice/internal/srctree"
)

func TestContentHashHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
	}
	for _, tt := range tests {
		if got := ContentHashHex([]byte(tt.in)); got != tt.want {
			t.Errorf("ContentHashHex(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewJob(t *testing.T) {
	files := map[string]string{"main.c": "int main;\n"}
	job := NewJob(Request{Root: "main.c", Files: files})
	files["main.c"] = "changed"

	if job.ID == "" || len(job.ID) != 26 {
		t.Errorf("expected 26-char job ID, got %q", job.ID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.Root != "main.c" {
		t.Errorf("expected root %q, got %q", "main.c", job.Root)
	}
	if got := job.Request().Files["main.c"]; got != "int main;\n" {
		t.Errorf("request files should be copied, got %q", got)
	}
}

func TestJob_SetStatusTouchesJob(t *testing.T) {
	job := NewJob(Request{Root: "main.c"})
	queuedAt := job.UpdatedAt
	time.Sleep(time.Millisecond)

	job.SetStatus(StatusResolving, "resolving")
	snap := job.Snapshot()
	if snap.Status != StatusResolving || snap.Phase != "resolving" {
		t.Fatalf("got %q/%q after SetStatus", snap.Status, snap.Phase)
	}
	if !snap.UpdatedAt.After(queuedAt) {
		t.Error("UpdatedAt did not advance")
	}
	if !snap.CreatedAt.Equal(job.CreatedAt) {
		t.Error("CreatedAt changed")
	}
}

func TestJob_Complete(t *testing.T) {
	job := NewJob(Request{Root: "main.c"})
	if job.Result() != nil {
		t.Fatal("expected no result before completion")
	}
	res := &Result{
		Text:        "a\n",
		LineCount:   1,
		Files:       []string{"main.c"},
		Index:       srctree.NewIndex([]srctree.Origin{{File: "main.c", Line: 1}}),
		ContentHash: ContentHashHex([]byte("a\n")),
	}
	job.Complete(res)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Phase != "done" {
		t.Errorf("unexpected status %q/%q", snap.Status, snap.Phase)
	}
	if snap.LineCount != 1 || len(snap.Files) != 1 || snap.ContentHash != res.ContentHash {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if job.Result() != res {
		t.Error("expected stored result")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("file \"a.h\" not found")
	job.AddError("second")

	snap := job.Snapshot()
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "file \"a.h\" not found" {
		t.Errorf("unexpected first error %q", snap.Errors[0])
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	// Snapshot should always return non-nil slices for JSON.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Errors == nil || snap.Files == nil {
		t.Error("expected non-nil slices in snapshot")
	}
}

func TestJobStore(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Cleanup()

	job := NewJob(Request{Root: "main.c"})
	store.Put(job)
	if store.Get(job.ID) != job {
		t.Fatal("Get did not return the stored job")
	}
	if store.Get("01ARZ3NDEKTSV4RRFFQ69G5FAV") != nil {
		t.Error("unknown id should be nil")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d", store.Len())
	}
}

func TestJobStore_CleanupDropsIdleJobs(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	idle := NewJob(Request{Root: "idle.c"})
	store.Put(idle)
	time.Sleep(100 * time.Millisecond)

	busy := NewJob(Request{Root: "busy.c"})
	store.Put(busy)
	store.Cleanup()

	if store.Get(idle.ID) != nil {
		t.Error("idle job survived cleanup")
	}
	if store.Get(busy.ID) == nil {
		t.Error("recent job was dropped")
	}
}
