package core

import (
	"testing"

	"github.com/gogpu/rendergraph/hal/noop"
	"github.com/gogpu/rendergraph/statetrack"
)

func newTestTextures(t *testing.T, tables *Tables, dev *noop.Device, n int) []TextureID {
	t.Helper()
	ids := make([]TextureID, n)
	for i := range ids {
		native, err := dev.CreateTexture(64, 64, 1, 1, 0, "tex")
		if err != nil {
			t.Fatalf("CreateTexture: %v", err)
		}
		ids[i] = tables.RegisterTexture(Texture{Native: native, Width: 64, Height: 64})
	}
	return ids
}

func TestCommandList_SetBindGroup_EmitsBarrierOnce(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)

	texIDs := newTestTextures(t, tables, dev, 1)
	layout := BindGroupLayout{
		Label: "l",
		Slots: map[string]SlotLayout{"tex": {RootParameterIndex: 0, Kind: RootParameterDescriptorTable, Descriptor: DescriptorShaderResource}},
	}
	layoutID := tables.RegisterBindGroupLayout(layout)
	bg, err := NewBindGroupBuilder(layoutID, layout).
		SetTexture("tex", texIDs[0], statetrack.StateNonPixelShaderResource).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cl, err := NewCommandList(tables, dev, "test list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}

	if err := cl.SetBindGroup(bg); err != nil {
		t.Fatalf("SetBindGroup: %v", err)
	}
	if got := noop.BarrierCount(cl.record.Native); got != 1 {
		t.Errorf("expected 1 barrier after first SetBindGroup, got %d", got)
	}

	// Rebinding the same bind group (same required state) should not
	// emit a redundant barrier.
	if err := cl.SetBindGroup(bg); err != nil {
		t.Fatalf("SetBindGroup (repeat): %v", err)
	}
	if got := noop.BarrierCount(cl.record.Native); got != 1 {
		t.Errorf("expected barrier count unchanged on repeated SetBindGroup, got %d", got)
	}
}

func TestCommandList_BarrierAndSwap(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)
	texIDs := newTestTextures(t, tables, dev, 2)
	handles := [2]TextureID{texIDs[0], texIDs[1]}

	cl, err := NewCommandList(tables, dev, "sim list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}

	if err := cl.BarrierAndSwap(&handles, statetrack.StateNonPixelShaderResource, statetrack.StateUnorderedAccess); err != nil {
		t.Fatalf("BarrierAndSwap: %v", err)
	}

	if handles[0] != texIDs[1] || handles[1] != texIDs[0] {
		t.Errorf("expected handles swapped, got %+v", handles)
	}
	if got := noop.BarrierCount(cl.record.Native); got != 2 {
		t.Errorf("expected 2 barriers (read + write transition), got %d", got)
	}
}

func TestCommandList_Dispatch_RequiresComputePipeline(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)
	cl, err := NewCommandList(tables, dev, "compute list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}

	if err := cl.Dispatch(1, 1, 1); !IsStateViolationError(err) {
		t.Errorf("expected StateViolationError with no pipeline bound, got %v", err)
	}

	layoutID := tables.RegisterBindGroupLayout(BindGroupLayout{Label: "l", Slots: map[string]SlotLayout{}})
	pipelineID := tables.RegisterPipeline(Pipeline{Kind: PipelineKindCompute, Layout: layoutID})
	if err := cl.SetComputePipeline(pipelineID); err != nil {
		t.Fatalf("SetComputePipeline: %v", err)
	}
	if err := cl.Dispatch(4, 4, 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got := noop.DispatchCount(cl.record.Native); got != 1 {
		t.Errorf("expected 1 dispatch recorded, got %d", got)
	}
}

func TestCommandList_Draw_RequiresRenderPipeline(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)
	cl, err := NewCommandList(tables, dev, "render list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}

	if err := cl.Draw(3, 1, 0, 0); !IsStateViolationError(err) {
		t.Errorf("expected StateViolationError with no pipeline bound, got %v", err)
	}

	layoutID := tables.RegisterBindGroupLayout(BindGroupLayout{Label: "l", Slots: map[string]SlotLayout{}})
	pipelineID := tables.RegisterPipeline(Pipeline{Kind: PipelineKindRender, Layout: layoutID})
	if err := cl.SetRenderPipeline(pipelineID); err != nil {
		t.Fatalf("SetRenderPipeline: %v", err)
	}
	if err := cl.Draw(3, 1, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := noop.DrawCount(cl.record.Native); got != 1 {
		t.Errorf("expected 1 draw recorded, got %d", got)
	}
}

func TestCommandList_CopyTexture_RestoresUsableStates(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)
	texIDs := newTestTextures(t, tables, dev, 2)

	cl, err := NewCommandList(tables, dev, "copy list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}

	if err := cl.CopyTexture(texIDs[0], texIDs[1]); err != nil {
		t.Fatalf("CopyTexture: %v", err)
	}
	if got := noop.CopyCount(cl.record.Native); got != 1 {
		t.Errorf("expected 1 copy recorded, got %d", got)
	}

	// A subsequent bind at the restored states should not require a
	// further barrier.
	if ok, err := cl.SetTextureState(texIDs[0], statetrack.StateNonPixelShaderResource); err != nil || ok {
		t.Errorf("expected src already in shader-resource state after copy, barrier=%v err=%v", ok, err)
	}
	if ok, err := cl.SetTextureState(texIDs[1], statetrack.StateUnorderedAccess); err != nil || ok {
		t.Errorf("expected dst already in unordered-access state after copy, barrier=%v err=%v", ok, err)
	}
}

func TestCommandList_CopyBuffer(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)

	srcNative, _ := dev.CreateBuffer(256, "src")
	dstNative, _ := dev.CreateBuffer(256, "dst")
	src := tables.RegisterBuffer(Buffer{Native: srcNative, SizeBytes: 256})
	dst := tables.RegisterBuffer(Buffer{Native: dstNative, SizeBytes: 256})

	cl, err := NewCommandList(tables, dev, "copy buf list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}
	if err := cl.CopyBuffer(src, dst, 256, 0, 0); err != nil {
		t.Fatalf("CopyBuffer: %v", err)
	}
	if got := noop.CopyCount(cl.record.Native); got != 1 {
		t.Errorf("expected 1 copy recorded, got %d", got)
	}
}

func TestCommandList_ExecuteIndirect(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)

	argNative, _ := dev.CreateBuffer(64, "args")
	argID := tables.RegisterBuffer(Buffer{Native: argNative, SizeBytes: 64})

	cl, err := NewCommandList(tables, dev, "indirect list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}
	if err := cl.ExecuteIndirect(argID, 0, 4); err != nil {
		t.Fatalf("ExecuteIndirect: %v", err)
	}
}

func TestCommandList_BuildAccelerationStructure(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)

	vbNative, _ := dev.CreateBuffer(1024, "vb")
	ibNative, _ := dev.CreateBuffer(512, "ib")
	vb := tables.RegisterBuffer(Buffer{Native: vbNative, SizeBytes: 1024})
	ib := tables.RegisterBuffer(Buffer{Native: ibNative, SizeBytes: 512})

	cl, err := NewCommandList(tables, dev, "as list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}
	if err := cl.BuildAccelerationStructure(vb, ib, 3, 3); err != nil {
		t.Fatalf("BuildAccelerationStructure: %v", err)
	}
}

func TestCommandList_Close_TwiceFails(t *testing.T) {
	dev := noop.New()
	tables := NewTables(2)
	cl, err := NewCommandList(tables, dev, "list")
	if err != nil {
		t.Fatalf("NewCommandList: %v", err)
	}
	if _, _, err := cl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := cl.Close(); !IsStateViolationError(err) {
		t.Errorf("expected StateViolationError on second Close, got %v", err)
	}
}
