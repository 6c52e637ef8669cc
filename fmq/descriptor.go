// Copyright 2016 Aleksandr Demakin. All rights reserved.

package fmq

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Flavor defines how readers and the writer of a queue share it.
type Flavor uint32

const (
	// Synchronized queue has one writer and one reader. The writer can not overrun the reader.
	Synchronized Flavor = iota + 1
	// Unsynchronized queue has one writer and any number of independent readers.
	// The writer never waits for readers and overwrites the oldest records.
	Unsynchronized
)

func (f Flavor) valid() bool {
	return f == Synchronized || f == Unsynchronized
}

func (f Flavor) String() string {
	switch f {
	case Synchronized:
		return "synchronized"
	case Unsynchronized:
		return "unsynchronized"
	default:
		return fmt.Sprintf("Flavor(%d)", uint32(f))
	}
}

const (
	maxNameLen        = 255
	descriptorVersion = 1
)

// Descriptor describes a queue's shared memory object.
// It is a plain value, so it can be copied freely and
// transmitted to another process with MarshalBinary.
type Descriptor struct {
	Name     string
	Flavor   Flavor
	Capacity int
	Stride   int
}

// Dup returns a copy of the descriptor.
func (d Descriptor) Dup() Descriptor {
	return d
}

// Size returns the size of the shared memory object described by d.
func (d Descriptor) Size() int {
	return calcQueueSize(d.Capacity, d.Stride)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%v, %dx%d)", d.Name, d.Flavor, d.Capacity, d.Stride)
}

func (d Descriptor) validate() error {
	if len(d.Name) == 0 || len(d.Name) > maxNameLen {
		return errors.Wrapf(ErrBadDescriptor, "invalid name length %d", len(d.Name))
	}
	if !d.Flavor.valid() {
		return errors.Wrapf(ErrBadDescriptor, "invalid flavor %v", d.Flavor)
	}
	if d.Capacity <= 0 || d.Stride <= 0 || d.Capacity > maxCapacity || d.Stride > maxStride {
		return errors.Wrapf(ErrBadDescriptor, "invalid geometry %dx%d", d.Capacity, d.Stride)
	}
	return nil
}

// MarshalBinary encodes the descriptor as:
//	version u8 | name length u8 | name | flavor u32 | capacity u32 | stride u32
// all integers are little-endian.
func (d Descriptor) MarshalBinary() ([]byte, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 2+len(d.Name)+12)
	buf = append(buf, descriptorVersion, byte(len(d.Name)))
	buf = append(buf, d.Name...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(d.Flavor))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(d.Capacity))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(d.Stride))
	return buf, nil
}

// UnmarshalBinary decodes a descriptor encoded with MarshalBinary.
func (d *Descriptor) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return errors.Wrap(ErrBadDescriptor, "descriptor is too short")
	}
	if data[0] != descriptorVersion {
		return errors.Wrapf(ErrBadDescriptor, "unsupported descriptor version %d", data[0])
	}
	nameLen := int(data[1])
	data = data[2:]
	if len(data) != nameLen+12 {
		return errors.Wrapf(ErrBadDescriptor, "invalid descriptor length %d", len(data)+2)
	}
	result := Descriptor{
		Name:     string(data[:nameLen]),
		Flavor:   Flavor(binary.LittleEndian.Uint32(data[nameLen:])),
		Capacity: int(binary.LittleEndian.Uint32(data[nameLen+4:])),
		Stride:   int(binary.LittleEndian.Uint32(data[nameLen+8:])),
	}
	if err := result.validate(); err != nil {
		return err
	}
	*d = result
	return nil
}
