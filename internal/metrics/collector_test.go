package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecordAndSnapshot(t *testing.T) {
	c := NewCollector()

	c.Record(OpExecute, 100*time.Millisecond, false)
	c.Record(OpExecute, 300*time.Millisecond, true)

	snap := c.Snapshot()
	if snap.Execute == nil {
		t.Fatal("expected execute stats")
	}
	if snap.Execute.Count != 2 {
		t.Errorf("count = %d, want 2", snap.Execute.Count)
	}
	if snap.Execute.Failures != 1 {
		t.Errorf("failures = %d, want 1", snap.Execute.Failures)
	}
	if snap.Execute.MinTimeMs != 100 || snap.Execute.MaxTimeMs != 300 {
		t.Errorf("min/max = %d/%d, want 100/300", snap.Execute.MinTimeMs, snap.Execute.MaxTimeMs)
	}
	if snap.Execute.AvgTimeMs != 200 {
		t.Errorf("avg = %f, want 200", snap.Execute.AvgTimeMs)
	}
}

func TestSnapshotOmitsUnusedOperations(t *testing.T) {
	c := NewCollector()
	c.Record(OpSignIn, time.Millisecond, false)

	snap := c.Snapshot()
	if snap.SignIn == nil {
		t.Error("expected sign-in stats")
	}
	if snap.Execute != nil || snap.Suggest != nil || snap.Download != nil {
		t.Error("unused operations must snapshot as nil")
	}
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record(OpSuggest, time.Millisecond, false)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.Suggest.Count != 1000 {
		t.Errorf("count = %d, want 1000", snap.Suggest.Count)
	}
}
