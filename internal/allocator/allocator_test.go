// Copyright 2016 Aleksandr Demakin. All rights reserved.

package allocator

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestByteSliceData(t *testing.T) {
	a := assert.New(t)
	data := make([]byte, 16)
	a.Equal(unsafe.Pointer(&data[0]), ByteSliceData(data))
	a.Nil(ByteSliceData(nil))
}

func TestByteSliceFromUnsafePointer(t *testing.T) {
	a := assert.New(t)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	ptr := AdvancePointer(ByteSliceData(data), 2)
	sl := ByteSliceFromUnsafePointer(ptr, 3, 6)
	a.Equal([]byte{3, 4, 5}, sl)
	a.Equal(6, cap(sl))
	sl[0] = 0xFF
	a.Equal(byte(0xFF), data[2])
}

func TestIsAligned(t *testing.T) {
	a := assert.New(t)
	var words [4]uint64
	ptr := unsafe.Pointer(&words[0])
	a.True(IsAligned(ptr, 8))
	a.False(IsAligned(AdvancePointer(ptr, 4), 8))
	a.True(IsAligned(AdvancePointer(ptr, 4), 4))
}
