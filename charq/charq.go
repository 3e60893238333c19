// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package charq implements the character queues used by terminal drivers:
// a FIFO of bytes stored in a short list of fixed-size blocks.
//
// A Queue does no locking of its own. It is shared between the interrupt
// path and process context, so every call must be made with interrupts
// disabled (see package spl).
package charq

import "errors"

const (
	BlockSize = 32                    // bytes per block
	MaxBlocks = 8                     // blocks per queue
	Capacity  = BlockSize * MaxBlocks // bytes per queue
)

// ErrFull is returned by Put when no block can be allocated.
var ErrFull = errors.New("charq: queue full")

type block struct {
	r    int // next index to read
	w    int // next index to write
	data [BlockSize]byte
}

func (b *block) empty() bool { return b.w == b.r }

// A Queue is a FIFO of bytes. The zero value is an empty queue.
type Queue struct {
	blocks []*block // blocks[0] is the head, blocks[len-1] the tail
	n      int      // unread bytes across all blocks
}

func (q *Queue) tail() *block {
	if len(q.blocks) == 0 {
		return nil
	}
	return q.blocks[len(q.blocks)-1]
}

// Put appends c to the queue.
// A new tail block is allocated when there is none or the tail is full.
// If the block limit is reached, Put returns ErrFull and leaves q unchanged.
func (q *Queue) Put(c byte) error {
	for {
		b := q.tail()
		if b != nil && b.w < BlockSize {
			b.data[b.w] = c
			b.w++
			q.n++
			return nil
		}
		if len(q.blocks) >= MaxBlocks {
			return ErrFull
		}
		q.blocks = append(q.blocks, new(block))
	}
}

// Unput removes and returns the most recently written byte.
// It reports false if the queue is empty.
func (q *Queue) Unput() (byte, bool) {
	b := q.tail()
	if b == nil {
		return 0, false
	}
	b.w--
	c := b.data[b.w]
	q.n--
	if b.empty() {
		q.blocks[len(q.blocks)-1] = nil
		q.blocks = q.blocks[:len(q.blocks)-1]
	}
	return c, true
}

// Get removes and returns the oldest byte.
// It reports false if the queue is empty; a NUL byte is returned as (0, true).
func (q *Queue) Get() (byte, bool) {
	if len(q.blocks) == 0 {
		return 0, false
	}
	b := q.blocks[0]
	c := b.data[b.r]
	b.r++
	q.n--
	if b.empty() {
		q.blocks[0] = nil
		q.blocks = q.blocks[1:]
	}
	return c, true
}

// Last returns the most recently written byte without removing it.
func (q *Queue) Last() (byte, bool) {
	b := q.tail()
	if b == nil {
		return 0, false
	}
	return b.data[b.w-1], true
}

// Flush discards every byte in the queue.
func (q *Queue) Flush() {
	clear(q.blocks)
	q.blocks = q.blocks[:0]
	q.n = 0
}

// Len returns the number of unread bytes.
func (q *Queue) Len() int { return q.n }

// Empty reports whether the queue holds no bytes.
func (q *Queue) Empty() bool { return q.n == 0 }

// Blocks returns the number of blocks currently allocated.
func (q *Queue) Blocks() int { return len(q.blocks) }

// Remaining returns the number of bytes the queue can still accept.
// Space already read from the head block is not reclaimed until that block
// empties, so Put may fail slightly before Remaining reaches zero.
func (q *Queue) Remaining() int { return Capacity - q.n }

// Bytes returns a copy of the unread bytes, oldest first.
func (q *Queue) Bytes() []byte {
	buf := make([]byte, 0, q.n)
	for _, b := range q.blocks {
		buf = append(buf, b.data[b.r:b.w]...)
	}
	return buf
}
