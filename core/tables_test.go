package core

import (
	"testing"

	"github.com/gogpu/rendergraph/hal/noop"
)

func TestTables_RegisterGetBuffer(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)

	native, err := dev.CreateBuffer(256, "test buffer")
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	id := tables.RegisterBuffer(Buffer{Native: native, SizeBytes: 256, Usage: BufferUsageVertex, Label: "test buffer"})

	got, err := tables.GetBuffer(id)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	if got.SizeBytes != 256 || got.Usage != BufferUsageVertex {
		t.Errorf("got %+v, want SizeBytes=256 Usage=Vertex", got)
	}
}

func TestTables_GetBuffer_InvalidID(t *testing.T) {
	tables := NewTables(2)
	if _, err := tables.GetBuffer(BufferID{}); err != ErrInvalidID {
		t.Errorf("GetBuffer(zero ID) = %v, want ErrInvalidID", err)
	}
}

func TestTables_GetBuffer_EpochMismatch(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)

	native, _ := dev.CreateBuffer(64, "a")
	id := tables.RegisterBuffer(Buffer{Native: native, SizeBytes: 64})
	if _, err := tables.buffers.Unregister(id); err != nil {
		t.Fatalf("Unregister: %v", err)
	}

	if _, err := tables.GetBuffer(id); err != ErrEpochMismatch {
		t.Errorf("GetBuffer(stale ID) = %v, want ErrEpochMismatch", err)
	}
}

func TestTables_ScheduleDestroyBuffer_DeferredUntilRetire(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)

	native, _ := dev.CreateBuffer(128, "deferred")
	id := tables.RegisterBuffer(Buffer{Native: native, SizeBytes: 128})

	tables.ScheduleDestroyBuffer(0, id)

	// Still resolvable: destruction is deferred until the frame retires.
	if _, err := tables.GetBuffer(id); err != nil {
		t.Fatalf("GetBuffer before retire: %v", err)
	}

	tables.RetireFrame(0)

	if _, err := tables.GetBuffer(id); err != ErrEpochMismatch {
		t.Errorf("GetBuffer after retire = %v, want ErrEpochMismatch", err)
	}
}

func TestTables_RetireFrame_OnlyClearsItsOwnSlot(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)

	bufA, _ := dev.CreateBuffer(64, "slot0")
	idA := tables.RegisterBuffer(Buffer{Native: bufA, SizeBytes: 64})
	bufB, _ := dev.CreateBuffer(64, "slot1")
	idB := tables.RegisterBuffer(Buffer{Native: bufB, SizeBytes: 64})

	tables.ScheduleDestroyBuffer(0, idA)
	tables.ScheduleDestroyBuffer(1, idB)

	tables.RetireFrame(0)

	if _, err := tables.GetBuffer(idA); err != ErrEpochMismatch {
		t.Errorf("slot 0 buffer should be destroyed, got err=%v", err)
	}
	if _, err := tables.GetBuffer(idB); err != nil {
		t.Errorf("slot 1 buffer should still be live, got err=%v", err)
	}
}

func TestTables_RegisterPipeline(t *testing.T) {
	tables := NewTables(2)
	layoutID := tables.RegisterBindGroupLayout(BindGroupLayout{Label: "layout", Slots: map[string]SlotLayout{}})

	id := tables.RegisterPipeline(Pipeline{Kind: PipelineKindCompute, Layout: layoutID, Label: "p"})
	got, err := tables.GetPipeline(id)
	if err != nil {
		t.Fatalf("GetPipeline: %v", err)
	}
	if got.Kind != PipelineKindCompute || got.Layout != layoutID {
		t.Errorf("got %+v", got)
	}
}
