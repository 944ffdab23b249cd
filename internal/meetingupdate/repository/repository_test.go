package repository

import (
	"testing"
	"time"
)

func TestRowCreatedAtStampsSynthesizedRows(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	// Buffer events built in-process carry no creation time yet.
	if got := rowCreatedAt(&Event{}, now); !got.Equal(now) {
		t.Errorf("rowCreatedAt(zero) = %v, want %v", got, now)
	}

	stored := time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)
	if got := rowCreatedAt(&Event{CreatedAt: stored}, now); !got.Equal(stored) {
		t.Errorf("rowCreatedAt(stored) = %v, want the original %v", got, stored)
	}
}
