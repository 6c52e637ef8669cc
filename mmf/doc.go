// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package mmf maps shared memory objects and files into the process' address space.
package mmf
