package data

import (
	"sync"
	"testing"
	"time"

	"github.com/nishkal/triage-api/refdata/entities"
)

func TestNewContainerStartsEmpty(t *testing.T) {
	c := NewContainer()

	snapshot := c.GetSnapshot()
	if snapshot == nil {
		t.Fatal("Snapshot should never be nil")
	}
	if len(snapshot.Medications) != 0 || len(snapshot.Pharmacies) != 0 {
		t.Error("New container should hold an empty snapshot")
	}
	if !c.GetLastUpdated().IsZero() {
		t.Error("New container should have a zero last-updated time")
	}
	if c.IsUpdating() {
		t.Error("New container should not be updating")
	}
}

func TestUpdateSnapshotSwapsWhole(t *testing.T) {
	c := NewContainer()

	snapshot := &entities.Snapshot{
		Medications: []entities.MedicationRecord{{SKU: "MED001", DrugName: "Amoxicillin 500mg", Indication: "pneumonia"}},
		LoadedAt:    time.Now(),
	}
	c.UpdateSnapshot(snapshot)

	got := c.GetSnapshot()
	if got != snapshot {
		t.Error("GetSnapshot should return the exact stored snapshot")
	}
	if c.GetLastUpdated().IsZero() {
		t.Error("UpdateSnapshot should record the swap time")
	}
}

func TestUpdateSnapshotRejectsNil(t *testing.T) {
	c := NewContainer()

	before := c.GetSnapshot()
	c.UpdateSnapshot(nil)

	if c.GetSnapshot() != before {
		t.Error("A nil snapshot must not replace the current one")
	}
}

func TestBeginUpdateIsExclusive(t *testing.T) {
	c := NewContainer()

	if !c.BeginUpdate() {
		t.Fatal("First BeginUpdate should succeed")
	}
	if c.BeginUpdate() {
		t.Error("Second BeginUpdate should fail while the first is active")
	}
	if !c.IsUpdating() {
		t.Error("IsUpdating should report true during an update")
	}

	c.EndUpdate()
	if !c.BeginUpdate() {
		t.Error("BeginUpdate should succeed again after EndUpdate")
	}
	c.EndUpdate()
}

func TestConcurrentReadersSeeCompleteSnapshots(t *testing.T) {
	c := NewContainer()

	// Writers alternate between two complete snapshots while readers
	// verify they only ever observe one of the two.
	a := &entities.Snapshot{Medications: []entities.MedicationRecord{{SKU: "A", DrugName: "A", Indication: "x"}}}
	b := &entities.Snapshot{Medications: []entities.MedicationRecord{{SKU: "B", DrugName: "B", Indication: "x"}}}
	c.UpdateSnapshot(a)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				c.UpdateSnapshot(b)
			} else {
				c.UpdateSnapshot(a)
			}
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snapshot := c.GetSnapshot()
				if snapshot != a && snapshot != b {
					t.Error("Reader observed a snapshot that was never stored")
					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestServerStartTime(t *testing.T) {
	c := NewContainer()

	start := time.Now()
	c.SetServerStartTime(start)

	if got := c.GetServerStartTime(); !got.Equal(start) {
		t.Errorf("Expected %v, got %v", start, got)
	}
}
