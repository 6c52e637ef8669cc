// Copyright 2016 Aleksandr Demakin. All rights reserved.

package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToString(t *testing.T) {
	type td struct {
		in  []byte
		out string
	}
	a := assert.New(t)
	data := []td{
		{in: nil, out: ""},
		{in: []byte{0}, out: "00"},
		{in: []byte{1, 0x0A, 0xFF}, out: "010AFF"},
	}
	for _, d := range data {
		a.Equal(d.out, BytesToString(d.in))
		decoded, err := StringToBytes(d.out)
		a.NoError(err)
		a.Equal(len(d.in), len(decoded))
		if len(d.in) > 0 {
			a.Equal(d.in, decoded)
		}
	}
}

func TestStringToBytesErrors(t *testing.T) {
	a := assert.New(t)
	_, err := StringToBytes("0")
	a.Error(err)
	_, err = StringToBytes("0G")
	a.Error(err)
	decoded, err := StringToBytes("0aFf")
	a.NoError(err)
	a.Equal([]byte{0x0A, 0xFF}, decoded)
}

func TestLines(t *testing.T) {
	a := assert.New(t)
	a.Equal([]string{"a", "b c"}, TestAppResult{Output: "a\n\n  b c \n"}.Lines())
	a.Nil(TestAppResult{}.Lines())
}
