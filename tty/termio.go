// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

// NCC is the number of control characters in the old termio structure.
const NCC = 8

// Termio is the older System V terminal structure, kept for the
// TCGETA family of ioctls. Its control characters are the first NCC
// slots of Termios.Cc.
type Termio struct {
	Iflag uint16
	Oflag uint16
	Cflag uint16
	Lflag uint16
	Line  uint8
	Cc    [NCC]uint8
}

// ToTermio returns t in the old layout. Flag bits above 16 are lost.
func (t *Termios) ToTermio() Termio {
	tio := Termio{
		Iflag: uint16(t.Iflag),
		Oflag: uint16(t.Oflag),
		Cflag: uint16(t.Cflag),
		Lflag: uint16(t.Lflag),
		Line:  t.Line,
	}
	copy(tio.Cc[:], t.Cc[:NCC])
	return tio
}

// FromTermio replaces the low 16 bits of each flag word and the first
// NCC control characters with those of tio.
func (t *Termios) FromTermio(tio *Termio) {
	t.Iflag = t.Iflag&^0xffff | uint32(tio.Iflag)
	t.Oflag = t.Oflag&^0xffff | uint32(tio.Oflag)
	t.Cflag = t.Cflag&^0xffff | uint32(tio.Cflag)
	t.Lflag = t.Lflag&^0xffff | uint32(tio.Lflag)
	t.Line = tio.Line
	copy(t.Cc[:NCC], tio.Cc[:])
}
