// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMessageLater(t *testing.T) {
	a := assert.New(t)
	a.True(IsMessageLater[uint32](2, 1))
	a.False(IsMessageLater[uint32](1, 2))
	a.False(IsMessageLater[uint32](5, 5))
	// across the wrap point.
	a.True(IsMessageLater[uint32](0, math.MaxUint32))
	a.True(IsMessageLater[uint32](3, math.MaxUint32-3))
	a.False(IsMessageLater[uint32](math.MaxUint32, 0))
	a.True(IsMessageLater[uint8](4, 250))
	// antipodal values are not ordered.
	a.False(IsMessageLater[uint8](128, 0))
	a.False(IsMessageLater[uint8](0, 128))
}

func TestIsMessageLaterAntisymmetric(t *testing.T) {
	for x := 0; x < 256; x++ {
		for y := 0; y < 256; y++ {
			a, b := uint8(x), uint8(y)
			if a == b || a-b == 128 {
				continue
			}
			if IsMessageLater(a, b) == IsMessageLater(b, a) {
				t.Fatalf("IsMessageLater(%d, %d) == IsMessageLater(%d, %d)", a, b, b, a)
			}
		}
	}
}

func TestIsBufferInRange(t *testing.T) {
	a := assert.New(t)
	a.True(IsBufferInRange[uint8](250, 10, 255))
	a.False(IsBufferInRange[uint8](250, 10, 10))
	a.True(IsBufferInRange[uint8](250, 10, 5))
	a.True(IsBufferInRange[uint8](250, 10, 250))
	a.False(IsBufferInRange[uint8](250, 10, 249))
	a.False(IsBufferInRange[uint8](250, 10, 100))

	a.True(IsBufferInRange[BufferID](10, 20, 10))
	a.True(IsBufferInRange[BufferID](10, 20, 19))
	a.False(IsBufferInRange[BufferID](10, 20, 20))
	a.False(IsBufferInRange[BufferID](10, 20, 9))
	a.True(IsBufferInRange[BufferID](math.MaxUint32-1, 2, math.MaxUint32))
	a.True(IsBufferInRange[BufferID](math.MaxUint32-1, 2, 0))
	a.False(IsBufferInRange[BufferID](math.MaxUint32-1, 2, 2))
}

func TestIsBufferInRangeWrapped(t *testing.T) {
	const from, to = 250, 10
	for x := 0; x < 256; x++ {
		id := uint8(x)
		expected := x >= from || x < to
		if IsBufferInRange[uint8](from, to, id) != expected {
			t.Fatalf("IsBufferInRange(%d, %d, %d) != %v", from, to, id, expected)
		}
	}
}
