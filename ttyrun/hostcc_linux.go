// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"golang.org/x/sys/unix"
	"rsc.io/tty/tty"
)

var hostCC = []int{
	tty.VINTR,
	tty.VQUIT,
	tty.VERASE,
	tty.VKILL,
	tty.VEOF,
	tty.VSTART,
	tty.VSTOP,
	tty.VSUSP,
	tty.VREPRINT,
	tty.VWERASE,
	tty.VLNEXT,
}

// hostControlChars copies the editing and signal characters
// of the host terminal fd into tio.
func hostControlChars(fd int, tio *tty.Termios) error {
	ht, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	for _, i := range hostCC {
		tio.Cc[i] = ht.Cc[i]
	}
	return nil
}
