package sysinfo

import (
	"context"
	"testing"
	"time"
)

func TestPollFirstSampleZeroRates(t *testing.T) {
	a := NewAdapter(nil)

	snap, err := a.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if snap.Network.RxSpeed != 0 || snap.Network.TxSpeed != 0 {
		t.Fatalf("first sample must report zero rates, got %+v", snap.Network)
	}
}

func TestPollDerivesRatesFromDelta(t *testing.T) {
	a := NewAdapter(nil)
	base := time.Now()
	a.now = func() time.Time { return base }

	if _, err := a.Poll(context.Background()); err != nil {
		t.Fatalf("first Poll: %v", err)
	}

	// Simulate one second between samples; counters only grow, so the
	// derived rates must be non-negative.
	base = base.Add(time.Second)
	snap, err := a.Poll(context.Background())
	if err != nil {
		t.Fatalf("second Poll: %v", err)
	}
	if snap.Network.RxSpeed < 0 || snap.Network.TxSpeed < 0 {
		t.Fatalf("negative rate: %+v", snap.Network)
	}
}

func TestPollMemoryAndDiskPopulated(t *testing.T) {
	a := NewAdapter(nil)

	snap, err := a.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if snap.Memory.Total == 0 {
		t.Fatal("expected total memory to be reported")
	}
	if snap.Disk.Total == 0 {
		t.Fatal("expected total disk to be reported")
	}
}
