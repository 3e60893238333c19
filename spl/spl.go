// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spl models the interrupt priority of a uniprocessor.
//
// Code that shares state with an interrupt handler raises the priority
// for the duration of the access:
//
//	defer cpu.Off().Restore()
//
// On a real machine this masks the interrupt; here it excludes the
// goroutine playing the interrupt handler. Critical sections do not nest.
package spl

import "sync"

// A CPU is the interrupt-enable state of a single processor.
// The zero value has interrupts enabled.
type CPU struct {
	mu sync.Mutex
}

// A Guard records that interrupts were disabled by Off.
type Guard struct {
	cpu *CPU
}

// Off disables interrupts, waiting for any handler in progress to finish.
func (c *CPU) Off() Guard {
	c.mu.Lock()
	return Guard{c}
}

// Restore re-enables the interrupts disabled by the matching Off.
func (g Guard) Restore() {
	g.cpu.mu.Unlock()
}

// Enable runs wait with interrupts enabled and disables them again before
// returning. It must be called inside a critical section; it is how a
// process gives up the processor to sleep.
func (c *CPU) Enable(wait func()) {
	c.mu.Unlock()
	defer c.mu.Lock()
	wait()
}

// Interrupt runs handler at interrupt priority.
func (c *CPU) Interrupt(handler func()) {
	defer c.Off().Restore()
	handler()
}
