// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

// Control character slots.
const (
	VINTR    = 0
	VQUIT    = 1
	VERASE   = 2
	VKILL    = 3
	VEOF     = 4
	VTIME    = 5
	VMIN     = 6
	VSWTC    = 7
	VSTART   = 8
	VSTOP    = 9
	VSUSP    = 10
	VEOL     = 11
	VREPRINT = 12
	VDISCARD = 13
	VWERASE  = 14
	VLNEXT   = 15
	VEOL2    = 16
	NCCS     = 19
)

// VDISABLE in a control character slot disables that character.
const VDISABLE = 0

/* input modes */
const (
	IGNBRK  = 0o000001
	BRKINT  = 0o000002
	IGNPAR  = 0o000004
	PARMRK  = 0o000010
	INPCK   = 0o000020
	ISTRIP  = 0o000040
	INLCR   = 0o000100
	IGNCR   = 0o000200
	ICRNL   = 0o000400
	IUCLC   = 0o001000
	IXON    = 0o002000
	IXANY   = 0o004000
	IXOFF   = 0o010000
	IMAXBEL = 0o020000
	IUTF8   = 0o040000
)

/* output modes */
const (
	OPOST  = 0o000001
	OLCUC  = 0o000002
	ONLCR  = 0o000004
	OCRNL  = 0o000010
	ONOCR  = 0o000020
	ONLRET = 0o000040
)

/* control modes */
const (
	CBAUD  = 0o010017
	B0     = 0o000000
	B50    = 0o000001
	B75    = 0o000002
	B110   = 0o000003
	B134   = 0o000004
	B150   = 0o000005
	B200   = 0o000006
	B300   = 0o000007
	B600   = 0o000010
	B1200  = 0o000011
	B1800  = 0o000012
	B2400  = 0o000013
	B4800  = 0o000014
	B9600  = 0o000015
	B19200 = 0o000016
	B38400 = 0o000017
	CSIZE  = 0o000060
	CS8    = 0o000060
	CSTOPB = 0o000100
	CREAD  = 0o000200
	PARENB = 0o000400
	HUPCL  = 0o002000
	CLOCAL = 0o004000
)

/* local modes */
const (
	ISIG    = 0o000001
	ICANON  = 0o000002
	XCASE   = 0o000004
	ECHO    = 0o000010
	ECHOE   = 0o000020
	ECHOK   = 0o000040
	ECHONL  = 0o000100
	NOFLSH  = 0o000200
	TOSTOP  = 0o000400
	ECHOCTL = 0o001000
	ECHOPRT = 0o002000
	ECHOKE  = 0o004000
	FLUSHO  = 0o010000
	PENDIN  = 0o040000
	IEXTEN  = 0o100000
)

// Termios is the terminal configuration, laid out like struct termios.
type Termios struct {
	Iflag uint32 // input modes
	Oflag uint32 // output modes
	Cflag uint32 // control modes
	Lflag uint32 // local modes
	Line  uint8  // line discipline
	Cc    [NCCS]uint8
}

// Winsize is the terminal window size.
type Winsize struct {
	Row    uint16
	Col    uint16
	Xpixel uint16
	Ypixel uint16
}

// ctrl returns the control character typed as ^c.
func ctrl(c byte) byte { return c & 0o37 }

// Reset sets t to the configuration of a freshly opened terminal.
func (t *Termios) Reset() {
	*t = Termios{
		Iflag: ICRNL | IXON | IXOFF,
		Oflag: OPOST | ONLCR,
		Cflag: B9600 | CS8 | HUPCL | CREAD | CLOCAL,
		Lflag: ISIG | ICANON | ECHO | ECHOE | ECHOK | ECHOCTL | ECHOKE | IEXTEN,
	}
	t.Cc[VINTR] = ctrl('C')
	t.Cc[VQUIT] = ctrl('\\')
	t.Cc[VERASE] = 0o177
	t.Cc[VKILL] = ctrl('U')
	t.Cc[VEOF] = ctrl('D')
	t.Cc[VTIME] = 0
	t.Cc[VMIN] = 1
	t.Cc[VSWTC] = VDISABLE
	t.Cc[VSTART] = ctrl('Q')
	t.Cc[VSTOP] = ctrl('S')
	t.Cc[VSUSP] = ctrl('Z')
	t.Cc[VEOL] = '\n'
	t.Cc[VREPRINT] = ctrl('R')
	t.Cc[VDISCARD] = ctrl('O')
	t.Cc[VWERASE] = ctrl('W')
	t.Cc[VLNEXT] = ctrl('V')
	t.Cc[VEOL2] = VDISABLE
}

func (t *Termios) iflag(f uint32) bool { return t.Iflag&f != 0 }
func (t *Termios) oflag(f uint32) bool { return t.Oflag&f != 0 }
func (t *Termios) lflag(f uint32) bool { return t.Lflag&f != 0 }

// is reports whether c is the control character in slot.
func (t *Termios) is(slot int, c byte) bool {
	return t.Cc[slot] != VDISABLE && c == t.Cc[slot]
}

func (t *Termios) Canonical() bool { return t.lflag(ICANON) }
func (t *Termios) Signals() bool { return t.lflag(ISIG) }
func (t *Termios) Extended() bool { return t.lflag(IEXTEN) }
func (t *Termios) Echo() bool { return t.lflag(ECHO) }
func (t *Termios) EchoNL() bool { return t.lflag(ECHONL) }
func (t *Termios) EchoCtl() bool { return t.Lflag&(ECHO|ECHOCTL) == ECHO|ECHOCTL }
func (t *Termios) VisualErase() bool { return t.Lflag&(ECHO|ECHOE) == ECHO|ECHOE }
func (t *Termios) EchoKillNL() bool { return t.lflag(ECHOK) && !t.lflag(ECHOE) }
func (t *Termios) NoFlush() bool { return t.lflag(NOFLSH) }
func (t *Termios) StopBackground() bool { return t.lflag(TOSTOP) }

func (t *Termios) Strip() bool { return t.iflag(ISTRIP) }
func (t *Termios) Lowercase() bool { return t.iflag(IUCLC) }
func (t *Termios) IgnoreCR() bool { return t.iflag(IGNCR) }
func (t *Termios) MapCRtoNL() bool { return t.iflag(ICRNL) }
func (t *Termios) MapNLtoCR() bool { return t.iflag(INLCR) }
func (t *Termios) FlowControl() bool { return t.iflag(IXON) }
func (t *Termios) AnyRestarts() bool { return t.iflag(IXANY) }

func (t *Termios) PostProcess() bool { return t.oflag(OPOST) }
func (t *Termios) MapNLtoCRNL() bool { return t.oflag(ONLCR) }
func (t *Termios) Uppercase() bool { return t.oflag(OLCUC) }

func (t *Termios) IsIntr(c byte) bool { return t.is(VINTR, c) }
func (t *Termios) IsQuit(c byte) bool { return t.is(VQUIT, c) }
func (t *Termios) IsSusp(c byte) bool { return t.is(VSUSP, c) }
func (t *Termios) IsErase(c byte) bool { return t.is(VERASE, c) }
func (t *Termios) IsKill(c byte) bool { return t.is(VKILL, c) }
func (t *Termios) IsEOF(c byte) bool { return t.is(VEOF, c) }
func (t *Termios) IsEOL(c byte) bool { return t.is(VEOL, c) }
func (t *Termios) IsStart(c byte) bool { return t.is(VSTART, c) }
func (t *Termios) IsStop(c byte) bool { return t.is(VSTOP, c) }

// The IEXTEN characters.
func (t *Termios) IsWerase(c byte) bool { return t.Extended() && t.is(VWERASE, c) }
func (t *Termios) IsReprint(c byte) bool { return t.Extended() && t.is(VREPRINT, c) }
func (t *Termios) IsLnext(c byte) bool { return t.Extended() && t.is(VLNEXT, c) }
func (t *Termios) IsEOL2(c byte) bool { return t.Extended() && t.is(VEOL2, c) }

// IsEditing reports whether c is one of the line editing characters.
func (t *Termios) IsEditing(c byte) bool {
	return t.IsErase(c) || t.IsWerase(c) || t.IsKill(c)
}

// IsTerminator reports whether c ends a canonical line.
func (t *Termios) IsTerminator(c byte) bool {
	return c == '\n' || t.IsEOL(c) || t.IsEOL2(c) || t.IsEOF(c)
}

// Min and Time return the non-canonical read parameters.
func (t *Termios) Min() int { return int(t.Cc[VMIN]) }
func (t *Termios) Time() int { return int(t.Cc[VTIME]) }

var speeds = [...]int{
	B0:     0,
	B50:    50,
	B75:    75,
	B110:   110,
	B134:   134,
	B150:   150,
	B200:   200,
	B300:   300,
	B600:   600,
	B1200:  1200,
	B1800:  1800,
	B2400:  2400,
	B4800:  4800,
	B9600:  9600,
	B19200: 19200,
	B38400: 38400,
}

// Speed returns the line speed in bits per second, or -1 if the
// CBAUD field holds an extended rate.
func (t *Termios) Speed() int {
	b := t.Cflag & CBAUD
	if int(b) >= len(speeds) {
		return -1
	}
	return speeds[b]
}

// SetSpeed sets the line speed, which must be one of the standard rates.
func (t *Termios) SetSpeed(bps int) error {
	for b, s := range speeds {
		if s == bps {
			t.Cflag = t.Cflag&^CBAUD | uint32(b)
			return nil
		}
	}
	return EINVAL
}

// isctrl and isspace follow the C library on 7-bit ASCII.
func isctrl(c byte) bool { return c < ' ' || c == 0o177 }
func isspace(c byte) bool { return c == ' ' || '\t' <= c && c <= '\r' }

// caret returns the printable half of the ^X echo of a control character.
func caret(c byte) byte { return c ^ 0o100 }
