// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package main

import "rsc.io/tty/tty"

func hostControlChars(fd int, tio *tty.Termios) error { return nil }
