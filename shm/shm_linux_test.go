// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShmFsFromReader(t *testing.T) {
	const (
		fstab = `
			#
			# /etc/fstab
			# name dir type opts freq passno
			UUID=cd459033-ae0a-4fb4-96fb-2323365a8e21 /      ext4    defaults        1 1
			UUID=53d61062-7b6b-4f5b-80fd-7baf4017f96d swap   swap    defaults        0 0
			tmpfs /dev/shm tmpfs rw,seclabel,nosuid,nodev 0 0
		`
		notTmpfs = "tmpfs /dev/shm nottmpfs rw,seclabel,nosuid,nodev 0 0"
	)
	a := assert.New(t)
	a.Equal("/dev/shm", shmFsFromReader(strings.NewReader(fstab)))
	a.Empty(shmFsFromReader(strings.NewReader(notTmpfs)))
}

func TestParseMountLine(t *testing.T) {
	a := assert.New(t)
	dir, fsType, ok := parseMountLine("tmpfs /run tmpfs rw 0 0")
	a.True(ok)
	a.Equal("/run", dir)
	a.Equal("tmpfs", fsType)
	_, _, ok = parseMountLine("# tmpfs /run tmpfs rw 0 0")
	a.False(ok)
	_, _, ok = parseMountLine("tmpfs /run tmpfs")
	a.False(ok)
}

func TestShmDirectory(t *testing.T) {
	dir, err := shmDirectory()
	assert.NoError(t, err)
	assert.NotEmpty(t, dir)
}
