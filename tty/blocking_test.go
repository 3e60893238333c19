// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"rsc.io/tty/kern"
	"rsc.io/tty/tty"
)

// syncBuffer is a bytes.Buffer safe for the console and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testSys struct {
	sys *kern.System
	tty *tty.TTY
	out *syncBuffer
	sh  *kern.Proc // session leader, in the foreground
}

func newSys(t *testing.T) *testSys {
	t.Helper()
	sys := kern.NewSystem()
	out := new(syncBuffer)
	tt, err := tty.NewTable(sys).Register(tty.Mkdev(tty.ConsoleMajor, 1), tty.NewConsole(out))
	if err != nil {
		t.Fatal(err)
	}
	sh, err := sys.NewProc(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := tt.Open(sh, 0); err != nil {
		t.Fatal(err)
	}
	return &testSys{sys, tt, out, sh}
}

func (s *testSys) stty(t *testing.T, args string) {
	t.Helper()
	tio := s.tty.Termios()
	if err := tio.Stty(args); err != nil {
		t.Fatal(err)
	}
	if err := s.tty.SetTermios(s.sh, tty.TCSANOW, &tio); err != nil {
		t.Fatal(err)
	}
}

type result struct {
	data string
	err  error
}

// read starts a Read by p in its own goroutine.
func (s *testSys) read(p *kern.Proc, n int, fl tty.Flags) <-chan result {
	c := make(chan result, 1)
	go func() {
		buf := make([]byte, n)
		m, err := s.tty.Read(p, buf, fl)
		c <- result{string(buf[:m]), err}
	}()
	return c
}

func (s *testSys) write(p *kern.Proc, data string) <-chan result {
	c := make(chan result, 1)
	go func() {
		m, err := s.tty.Write(p, []byte(data), 0)
		c <- result{data[:m], err}
	}()
	return c
}

func waitAsleep(t *testing.T, p *kern.Proc) {
	t.Helper()
	for i := 0; i < 2000; i++ {
		if p.Asleep() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("pid %d never slept", p.Pid())
}

func get(t *testing.T, c <-chan result) result {
	t.Helper()
	select {
	case r := <-c:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("call did not return")
	}
	return result{}
}

func TestReadWaitsForLine(t *testing.T) {
	s := newSys(t)
	c := s.read(s.sh, 100, 0)
	waitAsleep(t, s.sh)
	s.tty.Input([]byte("ab"))
	waitAsleep(t, s.sh)
	s.tty.Input([]byte("c\r"))
	if r := get(t, c); r.data != "abc\n" || r.err != nil {
		t.Errorf("Read = %q, %v, want %q, nil", r.data, r.err, "abc\n")
	}
	if got, want := s.out.String(), "abc\r\n"; got != want {
		t.Errorf("echo = %q, want %q", got, want)
	}
}

func TestReadMin(t *testing.T) {
	s := newSys(t)
	s.stty(t, "-icanon min=3 time=0")
	c := s.read(s.sh, 10, 0)
	for _, in := range []string{"a", "b", "c"} {
		waitAsleep(t, s.sh)
		s.tty.Input([]byte(in))
	}
	if r := get(t, c); r.data != "abc" || r.err != nil {
		t.Errorf("Read = %q, %v, want %q, nil", r.data, r.err, "abc")
	}
	s.tty.Input([]byte("d"))
	if r := get(t, s.read(s.sh, 10, tty.ONONBLOCK)); r.data != "d" || r.err != nil {
		t.Errorf("next Read = %q, %v, want %q, nil", r.data, r.err, "d")
	}
}

func TestReadTimeout(t *testing.T) {
	s := newSys(t)
	s.stty(t, "-icanon min=0 time=2")
	c := s.read(s.sh, 10, 0)
	waitAsleep(t, s.sh)
	for i := 0; i < 2*tty.HZ/10-1; i++ {
		s.sys.Tick()
	}
	if !s.sh.Asleep() {
		t.Fatalf("Read returned before VTIME expired")
	}
	s.sys.Tick()
	if r := get(t, c); r.data != "" || r.err != nil {
		t.Errorf("Read = %q, %v, want \"\", nil", r.data, r.err)
	}
	if n := s.sys.Callouts(); n != 0 {
		t.Errorf("%d timeouts left after Read", n)
	}
}

func TestReadTimeoutData(t *testing.T) {
	s := newSys(t)
	s.stty(t, "-icanon -echo min=0 time=10")
	c := s.read(s.sh, 10, 0)
	waitAsleep(t, s.sh)
	s.sys.Tick()
	s.tty.Input([]byte("hi"))
	if r := get(t, c); r.data != "hi" || r.err != nil {
		t.Errorf("Read = %q, %v, want %q, nil", r.data, r.err, "hi")
	}
	if n := s.sys.Callouts(); n != 0 {
		t.Errorf("timeout not cancelled: %d left", n)
	}
}

func TestReadInterbyteTimeout(t *testing.T) {
	s := newSys(t)
	s.stty(t, "-icanon -echo min=5 time=1")
	s.tty.Input([]byte("ab"))
	c := s.read(s.sh, 10, 0)
	waitAsleep(t, s.sh)
	for i := 0; i < tty.HZ/10; i++ {
		s.sys.Tick()
	}
	if r := get(t, c); r.data != "ab" || r.err != nil {
		t.Errorf("Read = %q, %v, want %q, nil", r.data, r.err, "ab")
	}
}

func TestReadInterrupted(t *testing.T) {
	s := newSys(t)
	c := s.read(s.sh, 10, 0)
	waitAsleep(t, s.sh)
	s.tty.Input([]byte("abc\x03"))
	if r := get(t, c); r.err != tty.EINTR {
		t.Errorf("Read = %q, %v, want EINTR", r.data, r.err)
	}
	if sig, ok := s.sh.TakeSignal(); !ok || sig != tty.SIGINT {
		t.Errorf("TakeSignal() = %v, %v, want SIGINT", sig, ok)
	}
	if s.tty.LineReady() {
		t.Errorf("INTR left a line")
	}
}

func TestReadNonblock(t *testing.T) {
	s := newSys(t)
	if r := get(t, s.read(s.sh, 10, tty.ONONBLOCK)); r.err != tty.EAGAIN {
		t.Errorf("Read(ONONBLOCK) = %v, want EAGAIN", r.err)
	}
}

// job starts a background job in the session of s.sh.
func (s *testSys) job(t *testing.T) *kern.Proc {
	t.Helper()
	p, err := s.sys.NewProc(s.sh)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Setpgid(0); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBackgroundJob(t *testing.T) {
	s := newSys(t)
	bg := s.job(t)
	if r := get(t, s.read(bg, 10, 0)); r.err != tty.ERESTART {
		t.Errorf("background Read = %v, want ERESTART", r.err)
	}
	if !bg.Pending(tty.SIGTTIN) {
		t.Errorf("background reader did not get SIGTTIN")
	}
	bg.TakeSignal()

	if r := get(t, s.write(bg, "x")); r.data != "x" || r.err != nil {
		t.Errorf("background Write without TOSTOP = %q, %v", r.data, r.err)
	}
	s.stty(t, "tostop")
	if r := get(t, s.write(bg, "y")); r.err != tty.ERESTART {
		t.Errorf("background Write with TOSTOP = %v, want ERESTART", r.err)
	}
	if !bg.Pending(tty.SIGTTOU) {
		t.Errorf("background writer did not get SIGTTOU")
	}
	bg.TakeSignal()

	bg.Block(tty.SIGTTIN, true)
	if r := get(t, s.read(bg, 10, 0)); r.err != tty.EIO {
		t.Errorf("background Read with SIGTTIN blocked = %v, want EIO", r.err)
	}
	bg.Block(tty.SIGTTIN, false)

	if err := s.tty.SetPgrp(bg.Pgid()); err != nil {
		t.Fatal(err)
	}
	s.tty.Input([]byte("fg\n"))
	if r := get(t, s.read(bg, 10, 0)); r.data != "fg\n" || r.err != nil {
		t.Errorf("foreground Read = %q, %v", r.data, r.err)
	}
	// The shell's parent is outside the session, so its group is orphaned.
	if r := get(t, s.read(s.sh, 10, 0)); r.err != tty.EIO {
		t.Errorf("shell Read in background = %v, want EIO", r.err)
	}
}

func TestOrphanedJob(t *testing.T) {
	s := newSys(t)
	bg := s.job(t)
	s.sh.Exit()
	if r := get(t, s.read(bg, 10, 0)); r.err != tty.EIO {
		t.Errorf("Read from orphaned group = %v, want EIO", r.err)
	}
	s.stty(t, "tostop")
	if r := get(t, s.write(bg, "x")); r.err != tty.EIO {
		t.Errorf("Write from orphaned group = %v, want EIO", r.err)
	}
}

func TestWriteFlowControl(t *testing.T) {
	s := newSys(t)
	s.tty.Input([]byte("\x13"))
	data := strings.Repeat("x", 300)
	c := s.write(s.sh, data)
	waitAsleep(t, s.sh)
	if got := s.out.String(); got != "" {
		t.Fatalf("output while stopped: %d bytes", len(got))
	}
	if _, writable := s.tty.Poll(); writable {
		t.Errorf("Poll reports writable while stopped")
	}
	s.tty.Input([]byte("\x11"))
	if r := get(t, c); r.data != data || r.err != nil {
		t.Errorf("Write = %d bytes, %v, want %d, nil", len(r.data), r.err, len(data))
	}
	if got := s.out.String(); got != data {
		t.Errorf("output = %d bytes, want %d", len(got), len(data))
	}
}

func TestWriteInterrupted(t *testing.T) {
	s := newSys(t)
	s.tty.Input([]byte("\x13"))
	c := s.write(s.sh, strings.Repeat("x", 300))
	waitAsleep(t, s.sh)
	s.sys.Kill(s.sh.Pid(), tty.SIGHUP)
	if r := get(t, c); len(r.data) != 256 || r.err != nil {
		t.Errorf("interrupted Write = %d bytes, %v, want 256, nil", len(r.data), r.err)
	}
}

func TestDrain(t *testing.T) {
	s := newSys(t)
	s.tty.Input([]byte("\x13"))
	get(t, s.write(s.sh, "hello"))

	tio := s.tty.Termios()
	tio.Stty("-echo")
	c := make(chan error, 1)
	go func() { c <- s.tty.SetTermios(s.sh, tty.TCSADRAIN, &tio) }()
	waitAsleep(t, s.sh)
	if tio := s.tty.Termios(); !tio.Echo() {
		t.Fatalf("TCSADRAIN applied before output drained")
	}
	s.tty.Input([]byte("\x11"))
	select {
	case err := <-c:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SetTermios did not return")
	}
	if tio := s.tty.Termios(); tio.Echo() {
		t.Errorf("TCSADRAIN did not apply settings")
	}
	if got := s.out.String(); got != "hello" {
		t.Errorf("output = %q, want %q", got, "hello")
	}
}

func TestWinch(t *testing.T) {
	s := newSys(t)
	s.sh.Ignore(tty.SIGWINCH, false)
	s.tty.SetWinsize(tty.Winsize{Row: 40, Col: 100})
	if !s.sh.Pending(tty.SIGWINCH) {
		t.Errorf("SetWinsize did not send SIGWINCH")
	}
}

func TestCloseReleasesTerminal(t *testing.T) {
	s := newSys(t)
	if s.sh.CTTY() != s.tty {
		t.Fatalf("session leader has no controlling terminal")
	}
	s.tty.Close(s.sh)
	if s.sh.CTTY() != nil {
		t.Errorf("controlling terminal kept after last close")
	}
	if s.tty.Pgrp() != 0 {
		t.Errorf("Pgrp() = %d after last close", s.tty.Pgrp())
	}
}

func TestCloseReleasesChild(t *testing.T) {
	s := newSys(t)
	child, err := s.sys.NewProc(s.sh)
	if err != nil {
		t.Fatal(err)
	}
	if child.CTTY() != s.tty {
		t.Fatalf("child did not inherit the controlling terminal")
	}
	s.tty.Close(s.sh)
	if child.CTTY() != nil {
		t.Errorf("child kept controlling terminal %v after last close", child.CTTY())
	}
	s.tty.Input([]byte("hi\n"))
	if r := get(t, s.read(child, 10, tty.ONONBLOCK)); r.data != "hi\n" || r.err != nil {
		t.Errorf("child Read = %q, %v, want %q, nil", r.data, r.err, "hi\n")
	}
}
