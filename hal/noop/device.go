// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package noop implements hal.Device against nothing at all. It exists
// so that resource tables, the descriptor allocator, the state tracker,
// the bind-group builder, the command-list recorder, the frame
// scheduler, and the fluid-sim pass can all be exercised by tests
// without a real GPU or driver present.
package noop

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/rendergraph/hal"
)

// Device is a no-op hal.Device. Every allocation succeeds and returns an
// object that does nothing; every submission is accepted immediately.
type Device struct {
	nextID atomic.Uint64
}

// New creates a no-op device.
func New() *Device {
	return &Device{}
}

func (d *Device) id() uint64 {
	return d.nextID.Add(1)
}

func (d *Device) CreateBuffer(sizeBytes uint64, label string) (hal.Buffer, error) {
	return &buffer{id: d.id(), size: sizeBytes, label: label}, nil
}

func (d *Device) CreateTexture(width, height, depth, mipLevels, format uint32, label string) (hal.Texture, error) {
	return &texture{id: d.id(), width: width, height: height, depth: depth, mipLevels: mipLevels, format: format, label: label}, nil
}

func (d *Device) CreateDescriptorHeap(numDescriptors uint32, label string) (hal.DescriptorHeap, error) {
	return &descriptorHeap{id: d.id(), slots: make([]slotWrite, numDescriptors), label: label}, nil
}

func (d *Device) CreateCommandList(label string) (hal.CommandList, error) {
	return &commandList{id: d.id(), label: label}, nil
}

func (d *Device) CreateFence(initial uint64) (hal.Fence, error) {
	f := &fence{label: "fence"}
	f.completed.Store(initial)
	return f, nil
}

func (d *Device) MakeBufferBarrier(buf hal.Buffer, from, to uint32) hal.Barrier {
	return hal.Barrier{Backend: bufferBarrier{buf: buf, from: from, to: to}}
}

func (d *Device) MakeTextureBarrier(tex hal.Texture, from, to uint32) hal.Barrier {
	return hal.Barrier{Backend: textureBarrier{tex: tex, from: from, to: to}}
}

func (d *Device) Submit(lists []hal.CommandList) error {
	for _, l := range lists {
		cl, ok := l.(*commandList)
		if !ok {
			return fmt.Errorf("noop: submitted command list is not a noop list")
		}
		if !cl.closed {
			return fmt.Errorf("noop: submitted command list %q was never closed", cl.label)
		}
	}
	return nil
}

func (d *Device) SignalFence(f hal.Fence, value uint64) error {
	nf, ok := f.(*fence)
	if !ok {
		return fmt.Errorf("noop: fence is not a noop fence")
	}
	nf.completed.Store(value)
	return nil
}

func (d *Device) Destroy() {}
