// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/nxgtw/go-bufferpool"
	"github.com/nxgtw/go-bufferpool/fmq"
	"github.com/nxgtw/go-bufferpool/internal/logging"
	"github.com/nxgtw/go-bufferpool/internal/test"

	"github.com/pkg/errors"
)

var (
	descHex = flag.String("desc", "", "status queue descriptor")
)

const usage = `  test program for status queues.
available commands:
  release {connection id} {first buffer id} {count}
  status {connection id} {target id} {transaction id} {buffer id} {status}
descriptor should be passed as a continuous string of 2-symbol hex byte values like '01020A'
`

func parseArgs(count int) ([]int64, error) {
	if flag.NArg()-1 != count {
		return nil, errors.Errorf("%d arguments required, %d given", count, flag.NArg()-1)
	}
	result := make([]int64, count)
	for i := range result {
		value, err := strconv.ParseInt(flag.Arg(i+1), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i+1)
		}
		result[i] = value
	}
	return result, nil
}

func attach() (*bufferpool.BufferStatusChannel, error) {
	data, err := testutil.StringToBytes(*descHex)
	if err != nil {
		return nil, err
	}
	var desc fmq.Descriptor
	if err = desc.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return bufferpool.NewBufferStatusChannel(desc, bufferpool.WithLogger(logging.Nop()))
}

func release(ch *bufferpool.BufferStatusChannel) error {
	args, err := parseArgs(3)
	if err != nil {
		return err
	}
	var pending, posted bufferpool.BufferIDList
	for i := int64(0); i < args[2]; i++ {
		pending.PushBack(bufferpool.BufferID(args[1] + i))
	}
	ch.PostBufferRelease(bufferpool.ConnectionID(args[0]), &pending, &posted)
	fmt.Println(posted.Len())
	return nil
}

func status(ch *bufferpool.BufferStatusChannel) error {
	args, err := parseArgs(5)
	if err != nil {
		return err
	}
	var pending, posted bufferpool.BufferIDList
	ok := ch.PostBufferStatusMessage(bufferpool.TransactionID(args[2]), bufferpool.BufferID(args[3]),
		bufferpool.BufferStatus(args[4]), bufferpool.ConnectionID(args[0]), bufferpool.ConnectionID(args[1]),
		&pending, &posted)
	if !ok {
		return errors.New("status message was not posted")
	}
	return nil
}

func runCommand() error {
	ch, err := attach()
	if err != nil {
		return err
	}
	defer ch.Close()
	switch flag.Arg(0) {
	case "release":
		return release(ch)
	case "status":
		return status(ch)
	default:
		return errors.Errorf("unknown command %q", flag.Arg(0))
	}
}

func main() {
	flag.Parse()
	if len(*descHex) == 0 || flag.NArg() == 0 {
		fmt.Print(usage)
		flag.Usage()
		os.Exit(1)
	}
	if err := runCommand(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
