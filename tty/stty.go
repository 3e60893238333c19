// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type modeBit struct {
	word int // 0 iflag, 1 oflag, 2 cflag, 3 lflag
	bit  uint32
}

var modeBits = map[string]modeBit{
	"ignbrk":  {0, IGNBRK},
	"brkint":  {0, BRKINT},
	"ignpar":  {0, IGNPAR},
	"parmrk":  {0, PARMRK},
	"inpck":   {0, INPCK},
	"istrip":  {0, ISTRIP},
	"inlcr":   {0, INLCR},
	"igncr":   {0, IGNCR},
	"icrnl":   {0, ICRNL},
	"iuclc":   {0, IUCLC},
	"ixon":    {0, IXON},
	"ixany":   {0, IXANY},
	"ixoff":   {0, IXOFF},
	"imaxbel": {0, IMAXBEL},
	"iutf8":   {0, IUTF8},
	"opost":   {1, OPOST},
	"olcuc":   {1, OLCUC},
	"onlcr":   {1, ONLCR},
	"ocrnl":   {1, OCRNL},
	"onocr":   {1, ONOCR},
	"onlret":  {1, ONLRET},
	"cstopb":  {2, CSTOPB},
	"cread":   {2, CREAD},
	"parenb":  {2, PARENB},
	"hupcl":   {2, HUPCL},
	"clocal":  {2, CLOCAL},
	"isig":    {3, ISIG},
	"icanon":  {3, ICANON},
	"xcase":   {3, XCASE},
	"echo":    {3, ECHO},
	"echoe":   {3, ECHOE},
	"echok":   {3, ECHOK},
	"echonl":  {3, ECHONL},
	"noflsh":  {3, NOFLSH},
	"tostop":  {3, TOSTOP},
	"echoctl": {3, ECHOCTL},
	"echoprt": {3, ECHOPRT},
	"echoke":  {3, ECHOKE},
	"flusho":  {3, FLUSHO},
	"pendin":  {3, PENDIN},
	"iexten":  {3, IEXTEN},
}

var ccNames = map[string]int{
	"intr":    VINTR,
	"quit":    VQUIT,
	"erase":   VERASE,
	"kill":    VKILL,
	"eof":     VEOF,
	"eol":     VEOL,
	"eol2":    VEOL2,
	"swtch":   VSWTC,
	"start":   VSTART,
	"stop":    VSTOP,
	"susp":    VSUSP,
	"rprnt":   VREPRINT,
	"reprint": VREPRINT,
	"werase":  VWERASE,
	"lnext":   VLNEXT,
	"discard": VDISCARD,
}

func (t *Termios) word(n int) *uint32 {
	switch n {
	case 0:
		return &t.Iflag
	case 1:
		return &t.Oflag
	case 2:
		return &t.Cflag
	}
	return &t.Lflag
}

// Stty applies settings written as for stty(1): mode names, optionally
// negated with '-' ("-echo", "icanon"), control characters ("erase=^H",
// "intr=undef", "eof=^D"), "min=N", "time=N", "speed=N", and the
// combinations "raw", "-raw", "cooked" and "sane".
// Each argument may hold several space-separated settings.
// On error t is left unchanged.
func (t *Termios) Stty(args ...string) error {
	nt := *t
	for _, arg := range args {
		for _, f := range strings.Fields(arg) {
			if err := nt.stty1(f); err != nil {
				return err
			}
		}
	}
	*t = nt
	return nil
}

func (t *Termios) stty1(f string) error {
	if name, val, ok := strings.Cut(f, "="); ok {
		switch name {
		case "min", "time":
			n, err := strconv.ParseUint(val, 10, 8)
			if err != nil {
				return fmt.Errorf("stty: invalid %s: %q", name, val)
			}
			if name == "min" {
				t.Cc[VMIN] = uint8(n)
			} else {
				t.Cc[VTIME] = uint8(n)
			}
			return nil
		case "speed":
			n, err := strconv.Atoi(val)
			if err != nil || t.SetSpeed(n) != nil {
				return fmt.Errorf("stty: invalid speed: %q", val)
			}
			return nil
		}
		slot, ok := ccNames[name]
		if !ok {
			return fmt.Errorf("stty: unknown setting: %q", f)
		}
		c, err := parseCC(val)
		if err != nil {
			return fmt.Errorf("stty: %s: %v", name, err)
		}
		t.Cc[slot] = c
		return nil
	}

	switch f {
	case "sane":
		t.Reset()
		return nil
	case "raw":
		t.Iflag &^= IGNBRK | BRKINT | IGNPAR | PARMRK | INPCK | ISTRIP | INLCR | IGNCR | ICRNL | IXON | IXOFF | IUCLC | IXANY | IMAXBEL
		t.Oflag &^= OPOST
		t.Lflag &^= ISIG | ICANON | XCASE | IEXTEN
		t.Cc[VMIN] = 1
		t.Cc[VTIME] = 0
		return nil
	case "-raw", "cooked":
		t.Iflag |= BRKINT | IGNPAR | ISTRIP | ICRNL | IXON
		t.Oflag |= OPOST
		t.Lflag |= ISIG | ICANON
		return nil
	}

	neg := strings.HasPrefix(f, "-")
	m, ok := modeBits[strings.TrimPrefix(f, "-")]
	if !ok {
		return fmt.Errorf("stty: unknown setting: %q", f)
	}
	w := t.word(m.word)
	if neg {
		*w &^= m.bit
	} else {
		*w |= m.bit
	}
	return nil
}

// parseCC parses a control character written as "^X", "^?", "^-",
// "undef", a single character, or a decimal number.
func parseCC(s string) (uint8, error) {
	switch {
	case s == "undef" || s == "^-" || s == "":
		return VDISABLE, nil
	case s == "^?":
		return 0o177, nil
	case len(s) == 2 && s[0] == '^':
		return ctrl(s[1]), nil
	case len(s) == 1:
		return s[0], nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid control character %q", s)
	}
	return uint8(n), nil
}

// FormatCC returns the stty spelling of a control character.
func FormatCC(c uint8) string {
	switch {
	case c == VDISABLE:
		return "undef"
	case c == 0o177:
		return "^?"
	case isctrl(c):
		return "^" + string(rune(caret(c)))
	}
	return string(rune(c))
}

var ccOrder = []string{"intr", "quit", "erase", "kill", "eof", "eol", "eol2", "swtch", "start", "stop", "susp", "rprnt", "werase", "lnext", "discard"}

// Settings returns the settings in the style of "stty -a":
// a line with the speed, min and time, a line of control
// characters, and one line of modes for each flag word.
// Stty accepts every word of the last lines.
func (t *Termios) Settings() string {
	var b strings.Builder
	fmt.Fprintf(&b, "speed %d baud; min = %d; time = %d;\n", t.Speed(), t.Min(), t.Time())
	for i, name := range ccOrder {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s = %s;", name, FormatCC(t.Cc[ccNames[name]]))
	}
	b.WriteString("\n")
	var words [4][]string
	for name, m := range modeBits {
		words[m.word] = append(words[m.word], name)
	}
	for w, names := range words {
		sort.Strings(names)
		for i, name := range names {
			if i > 0 {
				b.WriteString(" ")
			}
			if *t.word(w)&modeBits[name].bit == 0 {
				b.WriteString("-")
			}
			b.WriteString(name)
		}
		b.WriteString("\n")
	}
	return b.String()
}
