package descriptor

import "testing"

func TestAllocator_AllocateAdvancesCursor(t *testing.T) {
	a := New(16)

	r1, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate(4) error = %v", err)
	}
	if r1 != (Range{Start: 0, Count: 4}) {
		t.Errorf("r1 = %+v, want {0 4}", r1)
	}

	r2, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate(4) error = %v", err)
	}
	if r2 != (Range{Start: 4, Count: 4}) {
		t.Errorf("r2 = %+v, want {4 4}", r2)
	}
}

func TestAllocator_RefusesToCrossHeapBoundary(t *testing.T) {
	a := New(8)

	if _, err := a.Allocate(8); err != nil {
		t.Fatalf("Allocate(8) of an 8-slot heap should succeed, got %v", err)
	}
	if _, err := a.Allocate(1); err != ErrOutOfDescriptors {
		t.Errorf("Allocate(1) past capacity = %v, want ErrOutOfDescriptors", err)
	}
}

func TestAllocator_FreeReusesExactSizeMatch(t *testing.T) {
	a := New(16)

	r1, _ := a.Allocate(4)
	a.Allocate(4)
	a.Free(r1)

	r3, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate(4) after free error = %v", err)
	}
	if r3.Start != r1.Start {
		t.Errorf("expected the freed range to be reused, got Start=%d want %d", r3.Start, r1.Start)
	}
}

func TestAllocator_FreeDoesNotMoveCursorBackward(t *testing.T) {
	a := New(16)

	r1, _ := a.Allocate(4)
	a.Free(r1)

	if got := a.InUse(); got != 4 {
		t.Errorf("InUse() after free = %d, want 4 (cursor does not rewind)", got)
	}
}

func TestAllocator_Reset(t *testing.T) {
	a := New(16)
	a.Allocate(8)
	a.Reset()

	if got := a.InUse(); got != 0 {
		t.Errorf("InUse() after Reset = %d, want 0", got)
	}
	r, err := a.Allocate(16)
	if err != nil {
		t.Fatalf("Allocate(16) after Reset error = %v", err)
	}
	if r.Start != 0 {
		t.Errorf("Allocate after Reset should start at 0, got %d", r.Start)
	}
}
