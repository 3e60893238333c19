// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tty

import "sort"

// NTTY is the number of terminals a Table holds.
const NTTY = 16

// A Table is the set of registered terminals.
type Table struct {
	k    Kernel
	ttys map[Dev]*TTY
}

func NewTable(k Kernel) *Table {
	return &Table{k: k, ttys: make(map[Dev]*TTY)}
}

// Register creates the terminal dev, driven by drv.
func (tab *Table) Register(dev Dev, drv Driver) (*TTY, error) {
	defer tab.k.CPU().Off().Restore()
	if _, ok := tab.ttys[dev]; ok {
		return nil, EBUSY
	}
	if len(tab.ttys) >= NTTY {
		return nil, ENFILE
	}
	t := newTTY(dev, tab.k, drv)
	tab.ttys[dev] = t
	return t, nil
}

// Lookup returns the terminal dev.
func (tab *Table) Lookup(dev Dev) (*TTY, error) {
	defer tab.k.CPU().Off().Restore()
	t, ok := tab.ttys[dev]
	if !ok {
		return nil, ENXIO
	}
	return t, nil
}

// Resolve returns the terminal p means by dev.
// /dev/tty is p's controlling terminal, and minor 0 of the console
// major is the lowest numbered console.
func (tab *Table) Resolve(p Proc, dev Dev) (*TTY, error) {
	switch dev {
	case Mkdev(TTYAuxMajor, 0):
		defer tab.k.CPU().Off().Restore()
		if t := p.CTTY(); t != nil {
			return t, nil
		}
		return nil, ENXIO
	case Mkdev(ConsoleMajor, 0):
		for _, t := range tab.All() {
			if t.dev.Major() == ConsoleMajor && t.dev != dev {
				return t, nil
			}
		}
	}
	return tab.Lookup(dev)
}

// All returns the registered terminals in device number order.
func (tab *Table) All() []*TTY {
	defer tab.k.CPU().Off().Restore()
	var list []*TTY
	for _, t := range tab.ttys {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dev < list[j].dev })
	return list
}
