// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spl

import (
	"testing"
	"time"
)

func TestInterruptExcluded(t *testing.T) {
	var cpu CPU
	ran := make(chan bool)

	g := cpu.Off()
	go cpu.Interrupt(func() { ran <- true })
	select {
	case <-ran:
		t.Fatal("interrupt handler ran with interrupts disabled")
	case <-time.After(20 * time.Millisecond):
	}
	g.Restore()
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("interrupt handler did not run after Restore")
	}
}

func TestEnable(t *testing.T) {
	var cpu CPU
	done := make(chan bool)

	defer cpu.Off().Restore()
	cpu.Enable(func() {
		go cpu.Interrupt(func() { done <- true })
		<-done
	})
	// Back at high priority: a new handler must wait.
	go cpu.Interrupt(func() { done <- true })
	select {
	case <-done:
		t.Fatal("interrupt handler ran after Enable returned")
	case <-time.After(20 * time.Millisecond):
	}
	cpu.Enable(func() { <-done })
}

func TestRestoreOnPanic(t *testing.T) {
	var cpu CPU
	func() {
		defer func() { recover() }()
		defer cpu.Off().Restore()
		panic("boom")
	}()
	ok := make(chan bool)
	go cpu.Interrupt(func() { ok <- true })
	select {
	case <-ok:
	case <-time.After(5 * time.Second):
		t.Fatal("critical section left held after panic")
	}
}
