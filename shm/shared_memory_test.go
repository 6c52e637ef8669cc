// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shm

import (
	"os"
	"testing"

	"github.com/nxgtw/go-bufferpool/mmf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testObjName = "bufferpool-shm-test"

func TestMemoryObjectCreateOpenDestroy(t *testing.T) {
	a := assert.New(t)
	require.NoError(t, DestroyMemoryObject(testObjName))
	obj, err := NewMemoryObject(testObjName, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	require.NoError(t, err)
	a.Equal(testObjName, obj.Name())
	a.NoError(obj.Truncate(1024))
	a.Equal(int64(1024), obj.Size())
	_, err = NewMemoryObject(testObjName, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	a.Error(err)
	a.NoError(obj.Close())
	a.NoError(obj.Close())

	obj, err = NewMemoryObject(testObjName, os.O_RDWR, 0666)
	require.NoError(t, err)
	a.Equal(int64(1024), obj.Size())
	a.NoError(obj.Destroy())
	_, err = NewMemoryObject(testObjName, os.O_RDWR, 0666)
	a.True(os.IsNotExist(err))
	a.NoError(DestroyMemoryObject(testObjName))
}

func TestMemoryObjectInvalidName(t *testing.T) {
	a := assert.New(t)
	_, err := NewMemoryObject("", os.O_CREATE|os.O_RDWR, 0666)
	a.Error(err)
	_, err = NewMemoryObject("a/b", os.O_CREATE|os.O_RDWR, 0666)
	a.Error(err)
}

func TestNewMemoryObjectSize(t *testing.T) {
	a := assert.New(t)
	require.NoError(t, DestroyMemoryObject(testObjName))
	defer DestroyMemoryObject(testObjName)
	obj, created, err := NewMemoryObjectSize(testObjName, os.O_CREATE|os.O_RDWR, 0666, 4096)
	require.NoError(t, err)
	a.True(created)
	a.Equal(int64(4096), obj.Size())
	a.NoError(obj.Close())

	obj, created, err = NewMemoryObjectSize(testObjName, os.O_CREATE|os.O_RDWR, 0666, 2048)
	require.NoError(t, err)
	a.False(created)
	a.Equal(int64(4096), obj.Size())
	a.NoError(obj.Close())

	_, _, err = NewMemoryObjectSize(testObjName, os.O_RDWR, 0666, 8192)
	a.Error(err)
	_, _, err = NewMemoryObjectSize(testObjName, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666, 4096)
	a.Error(err)
	_, _, err = NewMemoryObjectSize(testObjName, os.O_RDWR, 0666, 0)
	a.Error(err)
}

func TestMemoryObjectSharedRegions(t *testing.T) {
	a := assert.New(t)
	require.NoError(t, DestroyMemoryObject(testObjName))
	obj, _, err := NewMemoryObjectSize(testObjName, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666, 1024)
	require.NoError(t, err)
	defer obj.Destroy()
	rwRegion, err := mmf.NewMemoryRegion(obj, mmf.MEM_READWRITE, 0, 1024)
	require.NoError(t, err)
	defer rwRegion.Close()
	roRegion, err := mmf.NewMemoryRegion(obj, mmf.MEM_READ_ONLY, 0, 1024)
	require.NoError(t, err)
	defer roRegion.Close()
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	copy(rwRegion.Data(), data)
	a.Equal(data, roRegion.Data()[:len(data)])
}
