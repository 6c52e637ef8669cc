// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package bufferpool implements buffer status and invalidation notifications
// between buffer pool connections over shared memory queues.
//
// Every connection reports released and transferred buffers through its own
// BufferStatusChannel. The coordinator owns a BufferStatusObserver, which creates
// a status queue per connection and drains all of them.
// Invalidations flow the other way: the coordinator posts buffer ranges through
// a single BufferInvalidationChannel, and each connection reads them with its own
// BufferInvalidationListener.
//
// Nothing blocks. If a queue has no room, a post is skipped or partially done,
// and the caller retries on the next cycle. Buffer and message ids wrap around,
// compare them with IsMessageLater and IsBufferInRange.
package bufferpool
