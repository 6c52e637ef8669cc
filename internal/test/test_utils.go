// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package testutil holds helpers for tests, which launch other processes.
package testutil

import (
	"bytes"
	"context"
	"encoding/hex"
	"os/exec"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// TestAppResult is a result of a 'go run' program launch
type TestAppResult struct {
	Output string
	Err    error
}

// Lines returns non-empty lines of the output.
func (r TestAppResult) Lines() []string {
	var result []string
	for _, line := range strings.Split(r.Output, "\n") {
		if line = strings.TrimSpace(line); len(line) > 0 {
			result = append(result, line)
		}
	}
	return result
}

// StringToBytes takes an input string in a 2-hex-symbol per byte format
// and returns corresponding byte array.
func StringToBytes(input string) ([]byte, error) {
	if len(input)%2 != 0 {
		return nil, errors.New("invalid byte array len")
	}
	data, err := hex.DecodeString(input)
	if err != nil {
		return nil, errors.Wrap(err, "invalid byte array")
	}
	return data, nil
}

// BytesToString converts a byte slice into its string representation.
// Each byte is represented by 2 upper-case hex symbols.
func BytesToString(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

// RunTestApp runs a go program via 'go run' and waits for it to finish.
// The process is killed, when ctx is done.
func RunTestApp(ctx context.Context, args []string) (result TestAppResult) {
	cmd := exec.CommandContext(ctx, "go", append([]string{"run"}, args...)...)
	buff := bytes.NewBuffer(nil)
	cmd.Stderr = buff
	cmd.Stdout = buff
	if result.Err = cmd.Run(); result.Err != nil {
		if exiterr, ok := result.Err.(*exec.ExitError); ok {
			if status, ok := exiterr.Sys().(syscall.WaitStatus); ok {
				result.Err = errors.Wrapf(result.Err, "status code = %d", status.ExitStatus())
			}
		}
	}
	result.Output = buff.String()
	return
}

// RunTestAppAsync starts a go program via 'go run' and returns immediately.
// To wait for the program to finish, receive on the returned chan.
func RunTestAppAsync(ctx context.Context, args []string) <-chan TestAppResult {
	ch := make(chan TestAppResult, 1)
	go func() {
		ch <- RunTestApp(ctx, args)
	}()
	return ch
}
