package vfx

import (
	"testing"
)

func TestAllocatorClaimAdvancesCursor(t *testing.T) {
	a := NewSpawnAllocator(10)

	start := a.Claim(8)
	if start != 0 {
		t.Errorf("first claim should start at 0, got %d", start)
	}
	if a.Cursor() != 8 {
		t.Errorf("cursor should be 8, got %d", a.Cursor())
	}
}

func TestAllocatorWrapsAroundCapacity(t *testing.T) {
	a := NewSpawnAllocator(10)
	a.Claim(8) // cursor at 8

	start := a.Claim(5)
	if start != 8 {
		t.Errorf("claim should start at 8, got %d", start)
	}

	// Claimed indices are {8,9,0,1,2}.
	want := []int{8, 9, 0, 1, 2}
	for i, w := range want {
		got := (start + i) % a.Capacity()
		if got != w {
			t.Errorf("claimed index %d: got %d, want %d", i, got, w)
		}
	}
	if a.Cursor() != 3 {
		t.Errorf("cursor should wrap to 3, got %d", a.Cursor())
	}
}

func TestAllocatorCountAboveCapacity(t *testing.T) {
	a := NewSpawnAllocator(4)

	start := a.Claim(6)
	if start != 0 {
		t.Errorf("claim should start at 0, got %d", start)
	}
	if a.Cursor() != 2 {
		t.Errorf("cursor should be (0+6)%%4 = 2, got %d", a.Cursor())
	}
}

func TestAllocatorReset(t *testing.T) {
	a := NewSpawnAllocator(16)
	a.Claim(11)
	a.Reset()
	if a.Cursor() != 0 {
		t.Errorf("cursor should be 0 after reset, got %d", a.Cursor())
	}
}
