// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kern

import (
	"testing"
	"time"

	"rsc.io/tty/tty"
)

func waitAsleep(t *testing.T, p *Proc) {
	t.Helper()
	for i := 0; i < 2000; i++ {
		if p.Asleep() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("pid %d never slept", p.Pid())
}

func newProc(t *testing.T, sys *System, parent *Proc) *Proc {
	t.Helper()
	p, err := sys.NewProc(parent)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

type key struct{ n int }

// sleep runs p.Sleep(k) in its own goroutine.
func sleep(sys *System, p *Proc, k any) <-chan error {
	c := make(chan error, 1)
	go func() {
		defer sys.CPU().Off().Restore()
		c <- p.Sleep(k)
	}()
	return c
}

func recv(t *testing.T, c <-chan error) error {
	t.Helper()
	select {
	case err := <-c:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("sleep did not return")
	}
	return nil
}

func TestSleepWakeup(t *testing.T) {
	sys := NewSystem()
	p := newProc(t, sys, nil)
	c := sleep(sys, p, key{1})
	waitAsleep(t, p)

	sys.CPU().Interrupt(func() { sys.Wakeup(key{2}) })
	if !p.Asleep() {
		t.Fatalf("Wakeup(other key) woke process")
	}
	sys.CPU().Interrupt(func() { sys.Wakeup(key{1}) })
	if err := recv(t, c); err != nil {
		t.Fatalf("Sleep = %v, want nil", err)
	}
	if !sys.NeedResched() {
		t.Errorf("NeedResched() = false after wakeup")
	}
}

func TestSleepSignal(t *testing.T) {
	sys := NewSystem()
	p := newProc(t, sys, nil)
	c := sleep(sys, p, key{1})
	waitAsleep(t, p)
	if err := sys.Kill(p.Pid(), tty.SIGINT); err != nil {
		t.Fatal(err)
	}
	if err := recv(t, c); err != tty.EINTR {
		t.Fatalf("Sleep = %v, want EINTR", err)
	}
	if sig, ok := p.TakeSignal(); !ok || sig != tty.SIGINT {
		t.Errorf("TakeSignal() = %v, %v, want SIGINT, true", sig, ok)
	}
	if _, ok := p.TakeSignal(); ok {
		t.Errorf("second TakeSignal() found a signal")
	}
}

func TestSignalBeforeSleep(t *testing.T) {
	sys := NewSystem()
	p := newProc(t, sys, nil)
	sys.Kill(p.Pid(), tty.SIGQUIT)
	if err := recv(t, sleep(sys, p, key{1})); err != tty.EINTR {
		t.Fatalf("Sleep = %v, want EINTR", err)
	}
}

func TestBlockedSignal(t *testing.T) {
	sys := NewSystem()
	p := newProc(t, sys, nil)
	p.Block(tty.SIGTTOU, true)
	c := sleep(sys, p, key{1})
	waitAsleep(t, p)
	sys.Kill(p.Pid(), tty.SIGTTOU)
	if !p.Asleep() {
		t.Fatalf("blocked signal interrupted sleep")
	}
	if !p.Pending(tty.SIGTTOU) {
		t.Errorf("blocked signal not pending")
	}
	p.Block(tty.SIGTTOU, false)
	sys.CPU().Interrupt(func() { sys.Wakeup(key{1}) })
	if err := recv(t, c); err != tty.EINTR {
		t.Fatalf("Sleep = %v, want EINTR once unblocked", err)
	}
}

func TestIgnoredSignal(t *testing.T) {
	sys := NewSystem()
	p := newProc(t, sys, nil)
	sys.Kill(p.Pid(), tty.SIGWINCH)
	if p.Pending(tty.SIGWINCH) {
		t.Errorf("SIGWINCH pending, want discarded")
	}
	p.Ignore(tty.SIGWINCH, false)
	sys.Kill(p.Pid(), tty.SIGWINCH)
	if !p.Pending(tty.SIGWINCH) {
		t.Errorf("SIGWINCH not pending after Ignore(false)")
	}
	if err := sys.Kill(99, tty.SIGINT); err != tty.ESRCH {
		t.Errorf("Kill(99) = %v, want ESRCH", err)
	}
}

func TestTimeout(t *testing.T) {
	sys := NewSystem()
	p := newProc(t, sys, nil)
	c := sleep(sys, p, key{1})
	waitAsleep(t, p)
	sys.CPU().Interrupt(func() { sys.Timeout(key{1}, 3) })
	sys.Tick()
	sys.Tick()
	if !p.Asleep() {
		t.Fatalf("woke after 2 ticks, want 3")
	}
	sys.Tick()
	if err := recv(t, c); err != nil {
		t.Fatalf("Sleep = %v, want nil", err)
	}
	if n := sys.Callouts(); n != 0 {
		t.Errorf("Callouts() = %d after firing, want 0", n)
	}
	if now := sys.Now(); now != 3 {
		t.Errorf("Now() = %d, want 3", now)
	}
}

func TestUntimeout(t *testing.T) {
	sys := NewSystem()
	sys.CPU().Interrupt(func() {
		sys.Timeout(key{1}, 1)
		sys.Timeout(key{2}, 1)
		sys.Timeout(key{1}, 5)
		sys.Untimeout(key{1})
	})
	if n := sys.Callouts(); n != 1 {
		t.Errorf("Callouts() = %d, want 1", n)
	}
}

func TestOrphanedGroup(t *testing.T) {
	sys := NewSystem()
	shell := newProc(t, sys, nil)
	job := newProc(t, sys, shell)
	if err := job.Setpgid(0); err != nil {
		t.Fatal(err)
	}
	orphaned := func() (o bool) {
		sys.CPU().Interrupt(func() { o = sys.OrphanedGroup(job.Pgid()) })
		return
	}
	if orphaned() {
		t.Errorf("job with shell parent reported orphaned")
	}
	shell.Exit()
	if !orphaned() {
		t.Errorf("job without shell not reported orphaned")
	}
}

func TestSetpgid(t *testing.T) {
	sys := NewSystem()
	leader := newProc(t, sys, nil)
	child := newProc(t, sys, leader)
	other := newProc(t, sys, nil)

	if err := leader.Setpgid(0); err != tty.EPERM {
		t.Errorf("session leader Setpgid = %v, want EPERM", err)
	}
	if err := child.Setpgid(other.Pgid()); err != tty.EPERM {
		t.Errorf("Setpgid(other session) = %v, want EPERM", err)
	}
	if err := child.Setpgid(0); err != nil || child.Pgid() != child.Pid() {
		t.Errorf("Setpgid(0) = %v, pgid %d, want nil, %d", err, child.Pgid(), child.Pid())
	}
	if err := child.Setpgid(leader.Pgid()); err != nil {
		t.Errorf("Setpgid(leader group) = %v", err)
	}
	if err := child.Setsid(); err != nil || !child.SessionLeader() {
		t.Errorf("Setsid = %v, leader %v", err, child.SessionLeader())
	}
}

func TestSignalGroup(t *testing.T) {
	sys := NewSystem()
	a := newProc(t, sys, nil)
	b := newProc(t, sys, a)
	c := newProc(t, sys, a)
	c.Setpgid(0)
	sys.CPU().Interrupt(func() { sys.SignalGroup(a.Pgid(), tty.SIGINT) })
	if !a.Pending(tty.SIGINT) || !b.Pending(tty.SIGINT) {
		t.Errorf("group member missed SIGINT")
	}
	if c.Pending(tty.SIGINT) {
		t.Errorf("process in another group got SIGINT")
	}
}
