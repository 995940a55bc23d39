package core

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/rendergraph/hal"
)

// Scheduler runs the K-buffered frame ring: it waits for a frame slot's
// fence before reusing that slot's resources, collects command lists to
// submit at end of frame, and retires deferred-destruction and
// completion-callback work once a frame's fence has signaled.
//
// This mirrors a double/triple-buffered renderer's begin_frame/end_frame
// pair: index 0's resources get reused on the next frame that lands in
// slot 0, index 1's on the next that lands in slot 1, and so on.
type Scheduler struct {
	device hal.Device
	tables *Tables

	framesInFlight int
	curSlot        int
	fence          hal.Fence
	fenceValues    []uint64
	nextFenceValue uint64

	pendingLists [][]hal.CommandList
	pendingCbs   [][]func()
}

// NewScheduler creates a scheduler with framesInFlight concurrently
// in-flight frames (spec config r.MaxInFlightGpuFrames).
func NewScheduler(device hal.Device, tables *Tables, framesInFlight int) (*Scheduler, error) {
	if framesInFlight < 1 {
		return nil, fmt.Errorf("core: framesInFlight must be >= 1, got %d", framesInFlight)
	}
	fence, err := device.CreateFence(0)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		device:         device,
		tables:         tables,
		framesInFlight: framesInFlight,
		curSlot:        -1,
		fence:          fence,
		fenceValues:    make([]uint64, framesInFlight),
		pendingLists:   make([][]hal.CommandList, framesInFlight),
		pendingCbs:     make([][]func(), framesInFlight),
	}, nil
}

// CurrentFrameSlot returns the frame-ring slot currently open for
// recording, i.e. get_cur_gpu_frame_idx.
func (s *Scheduler) CurrentFrameSlot() int {
	if s.curSlot < 0 {
		return 0
	}
	return s.curSlot
}

// BeginFrame advances the ring to the next slot, blocks until that
// slot's fence value from K frames ago has signaled, then retires the
// resources and callbacks that were waiting on it.
func (s *Scheduler) BeginFrame() error {
	s.curSlot = (s.curSlot + 1) % s.framesInFlight

	target := s.fenceValues[s.curSlot]
	if target > 0 {
		if err := s.fence.Wait(target); err != nil {
			return fmt.Errorf("core: waiting on frame slot %d fence: %w", s.curSlot, err)
		}
	}

	s.tables.RetireFrame(s.curSlot)
	for _, cb := range s.pendingCbs[s.curSlot] {
		cb()
	}
	s.pendingCbs[s.curSlot] = nil
	s.pendingLists[s.curSlot] = nil

	return nil
}

// SubmitCommandList enqueues a closed command list to be flushed when
// EndFrame is called, and registers the callbacks attached to it (via
// CommandList.AddCompletionCallback) to run once this frame retires.
func (s *Scheduler) SubmitCommandList(list hal.CommandList, callbacks []func()) {
	slot := s.CurrentFrameSlot()
	s.pendingLists[slot] = append(s.pendingLists[slot], list)
	s.pendingCbs[slot] = append(s.pendingCbs[slot], callbacks...)
}

// EndFrame submits every command list queued for this frame, signals
// the frame's fence value, and records that value so a future BeginFrame
// landing on this slot again knows what to wait for.
func (s *Scheduler) EndFrame() error {
	slot := s.CurrentFrameSlot()
	lists := s.pendingLists[slot]

	if len(lists) > 0 {
		if err := s.device.Submit(lists); err != nil {
			return fmt.Errorf("core: submitting frame %d: %w", slot, err)
		}
	}

	s.nextFenceValue++
	if err := s.device.SignalFence(s.fence, s.nextFenceValue); err != nil {
		return fmt.Errorf("core: signaling frame %d fence: %w", slot, err)
	}
	s.fenceValues[slot] = s.nextFenceValue

	slog.Debug("frame ended", "slot", slot, "fence_value", s.nextFenceValue, "lists_submitted", len(lists))
	return nil
}
