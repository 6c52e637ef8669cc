// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package fmq implements a fast message queue of fixed-size records
// placed in a named shared memory object.
//
// A queue is created by its owner, which passes the queue's Descriptor
// to a peer process. The peer attaches to the same memory with Attach.
// Two flavors are supported:
//	Synchronized - one writer and one reader share read and write positions.
//	The writer can not overrun the reader.
//	Unsynchronized - one writer and any number of readers. The writer never waits
//	and overwrites old records. Every reader keeps its own read position and
//	detects, when it was overrun.
//
// Queue operations never block. A queue instance is not safe for concurrent use
// by several goroutines; each side of a queue must be driven by a single goroutine.
package fmq
