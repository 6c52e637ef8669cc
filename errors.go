// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import "github.com/pkg/errors"

var (
	// ErrCriticalError is returned on a protocol misuse, like opening a connection id twice.
	ErrCriticalError = errors.New("critical error")
	// ErrNoMemory is returned, if a queue can not be allocated or registered.
	ErrNoMemory = errors.New("no memory")
	// ErrInvalidChannel is returned, if a channel can not attach to its queue.
	// Such a channel stays invalid for its whole life.
	ErrInvalidChannel = errors.New("invalid channel")
)
