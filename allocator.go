package vfx

// SpawnAllocator hands out particle indices from a ring cursor. There is no
// free list: claiming a slot overwrites whatever occupies it, dead or alive.
// Overwrite-on-exhaustion is the intended policy for a bounded pool.
type SpawnAllocator struct {
	next     int
	capacity int
}

func NewSpawnAllocator(capacity int) *SpawnAllocator {
	if capacity <= 0 {
		capacity = 1
	}
	return &SpawnAllocator{capacity: capacity}
}

func (a *SpawnAllocator) Capacity() int { return a.capacity }

// Cursor returns the next index to be claimed.
func (a *SpawnAllocator) Cursor() int { return a.next }

// Claim reserves count slots starting at the current cursor, wrapping at
// capacity, and returns the start index. Counts above capacity are legal:
// the range wraps multiple times and later writes within the same claim
// overwrite earlier ones.
func (a *SpawnAllocator) Claim(count int) int {
	if count < 0 {
		count = 0
	}
	start := a.next
	a.next = (a.next + count) % a.capacity
	return start
}

// Reset rewinds the cursor to slot zero.
func (a *SpawnAllocator) Reset() {
	a.next = 0
}
