// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package noop

import (
	"sync/atomic"

	"github.com/gogpu/rendergraph/hal"
)

type buffer struct {
	id      uint64
	size    uint64
	label   string
	destroy atomic.Bool
}

func (b *buffer) Destroy() { b.destroy.Store(true) }

type texture struct {
	id                   uint64
	width, height, depth uint32
	mipLevels, format    uint32
	label                string
	destroy              atomic.Bool
}

func (t *texture) Destroy() { t.destroy.Store(true) }

type slotWrite struct {
	kind string
	slot uint32
}

type descriptorHeap struct {
	id      uint64
	label   string
	slots   []slotWrite
	destroy atomic.Bool
}

func (h *descriptorHeap) Destroy() { h.destroy.Store(true) }

func (h *descriptorHeap) WriteConstantBufferView(slot uint32, _ hal.Buffer, _, _ uint64) {
	h.record(slot, "cbv")
}

func (h *descriptorHeap) WriteShaderResourceView(slot uint32, _ hal.Buffer, _ uint32) {
	h.record(slot, "srv")
}

func (h *descriptorHeap) WriteShaderResourceViewTexture(slot uint32, _ hal.Texture) {
	h.record(slot, "srv")
}

func (h *descriptorHeap) WriteUnorderedAccessView(slot uint32, _ hal.Texture) {
	h.record(slot, "uav")
}

func (h *descriptorHeap) record(slot uint32, kind string) {
	if int(slot) < len(h.slots) {
		h.slots[slot] = slotWrite{kind: kind, slot: slot}
	}
}

type fence struct {
	label     string
	completed atomic.Uint64
}

func (f *fence) Destroy()                 {}
func (f *fence) CompletedValue() uint64   { return f.completed.Load() }
func (f *fence) Wait(value uint64) error {
	// The noop device signals fences synchronously in SignalFence, so by
	// the time Wait is called the value has always already landed.
	for f.completed.Load() < value {
		break
	}
	return nil
}

type bufferBarrier struct {
	buf      hal.Buffer
	from, to uint32
}

type textureBarrier struct {
	tex      hal.Texture
	from, to uint32
}
