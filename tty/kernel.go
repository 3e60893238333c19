// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

import (
	"fmt"

	"rsc.io/tty/spl"
)

// A Signal is a signal number.
type Signal int

const (
	SIGHUP   Signal = 1
	SIGINT   Signal = 2
	SIGQUIT  Signal = 3
	SIGKILL  Signal = 9
	SIGCONT  Signal = 18
	SIGSTOP  Signal = 19
	SIGTSTP  Signal = 20
	SIGTTIN  Signal = 21
	SIGTTOU  Signal = 22
	SIGWINCH Signal = 28
	NSIG            = 32
)

var signames = map[Signal]string{
	SIGHUP:   "SIGHUP",
	SIGINT:   "SIGINT",
	SIGQUIT:  "SIGQUIT",
	SIGKILL:  "SIGKILL",
	SIGCONT:  "SIGCONT",
	SIGSTOP:  "SIGSTOP",
	SIGTSTP:  "SIGTSTP",
	SIGTTIN:  "SIGTTIN",
	SIGTTOU:  "SIGTTOU",
	SIGWINCH: "SIGWINCH",
}

func (s Signal) String() string {
	if name, ok := signames[s]; ok {
		return name
	}
	return fmt.Sprintf("Signal(%d)", int(s))
}

// HZ is the number of clock ticks per second.
const HZ = 60

// Kernel is the part of the rest of the system the terminal layer uses.
// Every method is called with interrupts disabled.
type Kernel interface {
	// CPU returns the interrupt state shared with the input interrupt.
	CPU() *spl.CPU

	// Wakeup makes every process sleeping on key runnable.
	Wakeup(key any)

	// Timeout arranges for Wakeup(key) after the given number of ticks.
	Timeout(key any, ticks int)

	// Untimeout cancels the pending timeouts for key.
	Untimeout(key any)

	// Ticks returns the number of clock ticks since boot.
	Ticks() uint64

	// NeedResched reports whether a higher priority process is runnable.
	NeedResched() bool

	// SignalGroup sends sig to every process in the process group.
	SignalGroup(pgid int, sig Signal)

	// OrphanedGroup reports whether no member of the process group has
	// a parent in another group of the same session.
	OrphanedGroup(pgid int) bool

	// ReleaseCTTY clears the controlling terminal of every process
	// whose controlling terminal is t.
	ReleaseCTTY(t *TTY)
}

// Proc is the process making a terminal call.
type Proc interface {
	Pid() int
	Pgid() int
	Sid() int
	SessionLeader() bool

	// CTTY returns the controlling terminal, or nil.
	CTTY() *TTY
	SetCTTY(t *TTY)

	// Sleep gives up the processor until a Wakeup on key.
	// It returns EINTR if a signal arrives before or during the sleep.
	Sleep(key any) error

	// Yield gives up the processor to any runnable process.
	Yield()

	// SignalPending reports whether an unblocked signal is pending.
	SignalPending() bool

	// SignalMasked reports whether sig is blocked or ignored.
	SignalMasked(sig Signal) bool
}

// Flags are the open file flags relevant to a terminal.
type Flags int

const (
	ONOCTTY   Flags = 0o400
	ONONBLOCK Flags = 0o4000
)

// Wait keys. Readers sleep on readWait, writers and drainers on writeWait.
type (
	readWait  struct{ t *TTY }
	writeWait struct{ t *TTY }
)
