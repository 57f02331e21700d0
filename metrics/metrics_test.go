package metrics

import (
	"testing"
)

func TestRecordCall(t *testing.T) {
	Reset()
	defer Reset()

	RecordCall(Returned, 21000)
	RecordCall(Returned, 30000)
	RecordCall(Reverted, 5000)
	RecordCall(Faulted, 0)

	got := Snapshot()
	if got.Calls != 4 {
		t.Errorf("Calls = %d want 4", got.Calls)
	}
	if got.Returns != 2 || got.Reverts != 1 || got.Faults != 1 {
		t.Errorf("outcomes = %d/%d/%d want 2/1/1", got.Returns, got.Reverts, got.Faults)
	}
	// hdrhistogram reports values at 3 significant figures.
	if got.GasMax < 29900 || got.GasMax > 30100 {
		t.Errorf("GasMax = %d want ~30000", got.GasMax)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	Reset()
	got := Snapshot()
	if got != (Summary{}) {
		t.Errorf("Snapshot() = %v want zero", got)
	}
}

func BenchmarkRecordCall(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		RecordCall(Returned, uint64(i))
	}
}
