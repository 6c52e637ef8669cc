// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package allocator provides unsafe helpers to address plain data placed in mapped memory.
package allocator

import (
	"unsafe"
)

// ByteSliceData returns a pointer to the data of the given byte slice.
func ByteSliceData(slice []byte) unsafe.Pointer {
	if cap(slice) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(slice))
}

// ByteSliceFromUnsafePointer returns a slice of bytes with given length and capacity.
// Memory pointed by the unsafe.Pointer is used for the slice.
func ByteSliceFromUnsafePointer(memory unsafe.Pointer, length, capacity int) []byte {
	return unsafe.Slice((*byte)(memory), capacity)[:length:capacity]
}

// AdvancePointer adds shift value to 'p' pointer.
func AdvancePointer(p unsafe.Pointer, shift uintptr) unsafe.Pointer {
	return unsafe.Add(p, shift)
}

// IsAligned returns true, if p is a multiple of align. align must be a power of 2.
func IsAligned(p unsafe.Pointer, align uintptr) bool {
	return uintptr(p)&(align-1) == 0
}
