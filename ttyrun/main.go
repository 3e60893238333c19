// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ttyrun runs a small line-echoing shell on a simulated console,
// using the host terminal as keyboard and screen.
//
// Usage:
//
//	ttyrun [-cpuprofile file] [-hz n] [-minor n] [-stty settings]
//	ttyrun -replay file.txt
//
// The shell reads lines through the terminal line discipline, so
// erase, kill, word erase, reprint and literal-next work as on a
// real console, and ^C, ^\ and ^Z raise signals. It understands:
//
//	stty [settings]  print or change the terminal settings
//	keys             show the bytes of each key until q or 5s of quiet
//	exit             exit (as do ^\ and end of file)
//
// Any other line is echoed back.
//
// With -replay, ttyrun runs the scripted session in a txtar file
// (see package rsc.io/tty/script) and prints a transcript instead.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"golang.org/x/term"
	"golang.org/x/tools/txtar"
	"rsc.io/tty/kern"
	"rsc.io/tty/script"
	"rsc.io/tty/tty"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpuprofile to `file`")
	hz         = flag.Int("hz", tty.HZ, "clock interrupts per second")
	minor      = flag.Int("minor", 1, "console minor device `number`")
	sttyFlag   = flag.String("stty", "", "apply stty `settings` before starting")
	replay     = flag.String("replay", "", "run the scripted session in `file`")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: ttyrun [flags]\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("ttyrun: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		usage()
	}

	if *replay != "" {
		ar, err := txtar.ParseFile(*replay)
		if err != nil {
			log.Fatal(err)
		}
		if err := script.Run(ar, os.Stdout); err != nil {
			log.Fatalf("%s:\n%v", *replay, err)
		}
		return
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}
	if *hz <= 0 {
		log.Fatalf("invalid -hz %d", *hz)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		log.Fatal("standard input is not a terminal; use -replay")
	}

	sys := kern.NewSystem()
	t, err := tty.NewTable(sys).Register(tty.Mkdev(tty.ConsoleMajor, *minor), tty.NewConsole(os.Stdout))
	if err != nil {
		log.Fatal(err)
	}
	sh, err := sys.NewProc(nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := t.Open(sh, 0); err != nil {
		log.Fatal(err)
	}

	tio := t.Termios()
	if err := hostControlChars(fd, &tio); err != nil {
		log.Printf("reading host terminal: %v", err)
	}
	if err := tio.Stty(*sttyFlag); err != nil {
		log.Fatal(err)
	}
	if err := t.SetTermios(sh, tty.TCSANOW, &tio); err != nil {
		log.Fatal(err)
	}
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetWinsize(tty.Winsize{Row: uint16(h), Col: uint16(w)})
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatal(err)
	}
	defer term.Restore(fd, oldState)

	go keyboard(t)
	go clock(sys, *hz)

	if err := shell(t, sh); err != nil {
		term.Restore(fd, oldState)
		log.Fatal(err)
	}
}

// keyboard copies host keystrokes into the terminal's input queue.
// End of file on the host becomes the terminal's EOF character.
func keyboard(t *tty.TTY) {
	buf := make([]byte, 100)
	for {
		n, err := os.Stdin.Read(buf)
		// An overrun drops input, as the hardware would.
		t.Input(buf[:n])
		if err == io.EOF {
			tio := t.Termios()
			t.Input([]byte{tio.Cc[tty.VEOF]})
			return
		}
		if err != nil {
			log.Printf("reading stdin: %v", err)
			return
		}
	}
}

// clock delivers hz clock interrupts per second.
func clock(sys *kern.System, hz int) {
	tick := time.NewTicker(time.Second / time.Duration(hz))
	defer tick.Stop()
	for range tick.C {
		sys.Tick()
	}
}

// A proc runs commands as a process on a terminal.
type proc struct {
	t *tty.TTY
	p *kern.Proc
}

func (pr *proc) printf(format string, args ...any) error {
	_, err := pr.t.Write(pr.p, []byte(fmt.Sprintf(format, args...)), 0)
	return err
}

// interrupted handles an error from a terminal read or write.
// It reports whether the shell should stop.
func (pr *proc) interrupted(err error) (bool, error) {
	if err != tty.EINTR && err != tty.ERESTART {
		return true, err
	}
	sig, ok := pr.p.TakeSignal()
	if !ok {
		return false, nil
	}
	switch sig {
	case tty.SIGQUIT, tty.SIGHUP:
		return true, nil
	case tty.SIGINT, tty.SIGTSTP:
		pr.printf("\n")
	}
	return false, nil
}

func shell(t *tty.TTY, p *kern.Proc) error {
	pr := &proc{t, p}
	buf := make([]byte, 256)
	for {
		if err := pr.printf("$ "); err != nil {
			if stop, err := pr.interrupted(err); stop {
				return err
			}
			continue
		}
		n, err := t.Read(p, buf, 0)
		if err != nil {
			if stop, err := pr.interrupted(err); stop {
				return err
			}
			continue
		}
		if n == 0 {
			pr.printf("\n")
			return nil
		}
		args := strings.Fields(string(buf[:n]))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit":
			return nil
		case "stty":
			err = pr.stty(args[1:])
		case "keys":
			err = pr.keys()
		default:
			err = pr.printf("%q\n", bytes.TrimSuffix(buf[:n], []byte("\n")))
		}
		if err != nil {
			if stop, err := pr.interrupted(err); stop {
				return err
			}
		}
	}
}

func (pr *proc) stty(args []string) error {
	tio := pr.t.Termios()
	if len(args) == 0 {
		ws := pr.t.Winsize()
		return pr.printf("rows %d; columns %d; %s", ws.Row, ws.Col, tio.Settings())
	}
	if err := tio.Stty(args...); err != nil {
		return pr.printf("%v\n", err)
	}
	return pr.t.SetTermios(pr.p, tty.TCSADRAIN, &tio)
}

func (pr *proc) keys() error {
	old := pr.t.Termios()
	tio := old
	if err := tio.Stty("-icanon -echo -isig min=0 time=50"); err != nil {
		return err
	}
	if err := pr.t.SetTermios(pr.p, tty.TCSADRAIN, &tio); err != nil {
		return err
	}
	defer pr.t.SetTermios(pr.p, tty.TCSANOW, &old)

	pr.printf("press keys; q or 5 seconds of quiet to stop\n")
	buf := make([]byte, 32)
	for {
		n, err := pr.t.Read(pr.p, buf, 0)
		if err != nil {
			return err
		}
		if n == 0 {
			return pr.printf("timeout\n")
		}
		if err := pr.printf("% x\n", buf[:n]); err != nil {
			return err
		}
		if bytes.IndexByte(buf[:n], 'q') >= 0 {
			return nil
		}
	}
}
