// Copyright 2015 Aleksandr Demakin. All rights reserved.

package mmf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFile(t *testing.T, size int) *os.File {
	file, err := os.Create(filepath.Join(t.TempDir(), "test.bin"))
	require.NoError(t, err)
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	_, err = file.Write(data)
	require.NoError(t, err)
	t.Cleanup(func() {
		file.Close()
	})
	return file
}

func TestMmfOpen(t *testing.T) {
	a := assert.New(t)
	size := 4 * os.Getpagesize()
	file := createTestFile(t, size)
	mr, err := NewMemoryRegion(file, MEM_READ_ONLY, 0, size)
	if !a.NoError(err) {
		return
	}
	a.Equal(size, mr.Size())
	a.NoError(mr.Close())
	mr, err = NewMemoryRegion(file, MEM_READ_ONLY, 0, 0)
	a.NoError(err)
	a.Equal(size, mr.Size())
	a.NoError(mr.Close())
	mr, err = NewMemoryRegion(file, MEM_READ_ONLY, int64(size-1024), 1024)
	a.NoError(err)
	a.NoError(mr.Close())
	_, err = NewMemoryRegion(file, MEM_READ_ONLY, int64(size-1024), 1025)
	a.Error(err)
	_, err = NewMemoryRegion(file, 0, 0, size)
	a.Error(err)
	_, err = NewMemoryRegion(file, MEM_READ_ONLY, -1, 16)
	a.Error(err)
}

func TestMmfOpenWithOffset(t *testing.T) {
	const (
		offset = 1000
	)
	size := 2 * os.Getpagesize()
	file := createTestFile(t, size)
	region, err := NewMemoryRegion(file, MEM_READ_ONLY, offset, 1024)
	if !assert.NoError(t, err) {
		return
	}
	defer region.Close()
	assert.Equal(t, 1024, region.Size())
	for i := 0; i < 1024; i++ {
		if !assert.Equal(t, byte(i+offset), region.Data()[i]) {
			break
		}
	}
}

func TestMmfSharedWrite(t *testing.T) {
	a := assert.New(t)
	size := os.Getpagesize()
	file := createTestFile(t, size)
	wr, err := NewMemoryRegion(file, MEM_READWRITE, 0, size)
	if !a.NoError(err) {
		return
	}
	defer wr.Close()
	rd, err := NewMemoryRegion(file, MEM_READ_ONLY, 0, size)
	if !a.NoError(err) {
		return
	}
	defer rd.Close()
	copy(wr.Data(), []byte{0xDE, 0xAD, 0xBE, 0xEF})
	a.Equal([]byte{0xDE, 0xAD, 0xBE, 0xEF}, rd.Data()[:4])
	a.NoError(wr.Close())
	a.Nil(wr.Data())
	a.NoError(wr.Close())
}
