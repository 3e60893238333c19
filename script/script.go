// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package script runs terminal sessions written as txtar archives.
//
// The sections of an archive are applied in order, and a name may
// repeat:
//
//	stty    settings for Termios.Stty, applied at once
//	input   quoted strings, each typed with one call to Input
//	write   quoted strings, each written by the session leader
//	read    one line per non-blocking Read: the quoted data expected,
//	        or the name of the error, such as EAGAIN
//	output  quoted strings whose concatenation is what the console
//	        printed since the previous output section
//
// Quoted strings use Go syntax, so "abc\x7f\n" types abc, DEL, newline.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/tools/txtar"
	"rsc.io/tty/kern"
	"rsc.io/tty/tty"
)

// A Session is a terminal opened by the leader of a new session.
type Session struct {
	Sys    *kern.System
	TTY    *tty.TTY
	Leader *kern.Proc

	out   bytes.Buffer
	shown int
}

// NewSession returns a new system with one console, opened by a
// session leader that has it as controlling terminal.
func NewSession() (*Session, error) {
	s := new(Session)
	s.Sys = kern.NewSystem()
	t, err := tty.NewTable(s.Sys).Register(tty.Mkdev(tty.ConsoleMajor, 1), tty.NewConsole(&s.out))
	if err != nil {
		return nil, err
	}
	s.TTY = t
	if s.Leader, err = s.Sys.NewProc(nil); err != nil {
		return nil, err
	}
	if err := t.Open(s.Leader, 0); err != nil {
		return nil, err
	}
	return s, nil
}

// Output returns what the console printed since the last call.
func (s *Session) Output() string {
	defer s.Sys.CPU().Off().Restore()
	b := s.out.Bytes()[s.shown:]
	s.shown = s.out.Len()
	return string(b)
}

// Stty applies stty settings to the terminal.
func (s *Session) Stty(args string) error {
	tio := s.TTY.Termios()
	if err := tio.Stty(args); err != nil {
		return err
	}
	return s.TTY.SetTermios(s.Leader, tty.TCSANOW, &tio)
}

// Run runs the session described by ar, writing a transcript to w.
// It returns an error describing every read or output that differs
// from the archive.
func Run(ar *txtar.Archive, w io.Writer) error {
	s, err := NewSession()
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range ar.Files {
		lines := lines(f.Data)
		switch f.Name {
		default:
			return fmt.Errorf("unknown section %q", f.Name)

		case "stty":
			args := strings.Join(lines, " ")
			fmt.Fprintf(w, "stty %s\n", args)
			if err := s.Stty(args); err != nil {
				return err
			}

		case "input":
			for _, line := range lines {
				q, err := strconv.Unquote(line)
				if err != nil {
					return fmt.Errorf("input: bad quoted string %s", line)
				}
				fmt.Fprintf(w, "input %s\n", line)
				if err := s.TTY.Input([]byte(q)); err != nil {
					fmt.Fprintf(w, "\t%v\n", err)
				}
			}

		case "write":
			for _, line := range lines {
				q, err := strconv.Unquote(line)
				if err != nil {
					return fmt.Errorf("write: bad quoted string %s", line)
				}
				n, err := s.TTY.Write(s.Leader, []byte(q), tty.ONONBLOCK)
				fmt.Fprintf(w, "write %s = %d, %v\n", line, n, err)
			}

		case "read":
			for _, want := range lines {
				buf := make([]byte, 256)
				n, err := s.TTY.Read(s.Leader, buf, tty.ONONBLOCK)
				got := strconv.Quote(string(buf[:n]))
				if err != nil {
					got = err.Error()
				}
				fmt.Fprintf(w, "read %s\n", got)
				if !same(got, want) {
					errs = append(errs, fmt.Errorf("read %s, want %s", got, want))
				}
			}

		case "output":
			var want strings.Builder
			for _, line := range lines {
				q, err := strconv.Unquote(line)
				if err != nil {
					return fmt.Errorf("output: bad quoted string %s", line)
				}
				want.WriteString(q)
			}
			got := s.Output()
			fmt.Fprintf(w, "output %q\n", got)
			if got != want.String() {
				errs = append(errs, fmt.Errorf("output %q, want %q", got, want.String()))
			}
		}
	}
	return errors.Join(errs...)
}

// same reports whether the read result got matches want,
// comparing quoted strings by value.
func same(got, want string) bool {
	if g, err := strconv.Unquote(got); err == nil {
		w, err := strconv.Unquote(want)
		return err == nil && g == w
	}
	return got == want
}

func lines(data []byte) []string {
	var list []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			list = append(list, line)
		}
	}
	return list
}
