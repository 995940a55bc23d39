// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package noop

import (
	"fmt"

	"github.com/gogpu/rendergraph/hal"
)

type commandList struct {
	id         uint64
	label      string
	closed     bool
	barriers   int
	dispatches int
	draws      int
	indirects  int
	copies     int
	asBuilds   int
}

func (c *commandList) Destroy() {}

func (c *commandList) ResourceBarrier(barriers []hal.Barrier) {
	c.barriers += len(barriers)
}

func (c *commandList) Dispatch(groupsX, groupsY, groupsZ uint32) {
	c.dispatches++
}

func (c *commandList) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	c.draws++
}

func (c *commandList) ExecuteIndirect(argBuffer hal.Buffer, argOffset uint64, count uint32) {
	c.indirects++
}

func (c *commandList) CopyBuffer(src, dst hal.Buffer, size, srcOffset, dstOffset uint64) {
	c.copies++
}

func (c *commandList) CopyTexture(src, dst hal.Texture) {
	c.copies++
}

func (c *commandList) BuildAccelerationStructure(desc hal.AccelerationStructureDesc) {
	c.asBuilds++
}

func (c *commandList) Close() error {
	if c.closed {
		return fmt.Errorf("noop: command list %q closed twice", c.label)
	}
	c.closed = true
	return nil
}

// BarrierCount returns the number of transition barriers recorded on this
// list. Tests use it to assert the exact barrier counts the fluid-sim
// pass is specified to produce.
func BarrierCount(l hal.CommandList) int {
	if cl, ok := l.(*commandList); ok {
		return cl.barriers
	}
	return 0
}

// DispatchCount returns the number of compute dispatches recorded on
// this list.
func DispatchCount(l hal.CommandList) int {
	if cl, ok := l.(*commandList); ok {
		return cl.dispatches
	}
	return 0
}

// CopyCount returns the number of CopyBuffer/CopyTexture calls recorded
// on this list.
func CopyCount(l hal.CommandList) int {
	if cl, ok := l.(*commandList); ok {
		return cl.copies
	}
	return 0
}

// DrawCount returns the number of Draw calls recorded on this list.
func DrawCount(l hal.CommandList) int {
	if cl, ok := l.(*commandList); ok {
		return cl.draws
	}
	return 0
}
