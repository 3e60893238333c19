// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kern

type callout struct {
	when uint64 /* tick at which to fire */
	key  any    /* key to wake up */
}

/*
 * Arrange for Wakeup(key) to be called
 * after the given number of ticks.
 */
func (sys *System) Timeout(key any, ticks int) {
	if len(sys.callout) >= NCALL {
		panic("kern: timeout table overflow")
	}
	if ticks < 1 {
		ticks = 1
	}
	sys.callout = append(sys.callout, callout{sys.ticks + uint64(ticks), key})
}

// Untimeout cancels every pending timeout for key.
func (sys *System) Untimeout(key any) {
	out := sys.callout[:0]
	for _, c := range sys.callout {
		if c.key != key {
			out = append(out, c)
		}
	}
	clear(sys.callout[len(out):])
	sys.callout = out
}

func (sys *System) Ticks() uint64 { return sys.ticks }

/*
 * The clock interrupt.
 * Advance the tick count and
 * fire the callouts that are due.
 */
func (sys *System) Tick() {
	defer sys.cpu.Off().Restore()
	sys.ticks++
	var due []any
	out := sys.callout[:0]
	for _, c := range sys.callout {
		if c.when <= sys.ticks {
			due = append(due, c.key)
		} else {
			out = append(out, c)
		}
	}
	clear(sys.callout[len(out):])
	sys.callout = out
	for _, key := range due {
		sys.Wakeup(key)
	}
}

// Now returns the number of ticks since boot.
func (sys *System) Now() uint64 {
	defer sys.cpu.Off().Restore()
	return sys.ticks
}

// Callouts returns the number of timeouts waiting to fire.
func (sys *System) Callouts() int {
	defer sys.cpu.Off().Restore()
	return len(sys.callout)
}
