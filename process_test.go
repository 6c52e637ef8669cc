// Copyright 2016 Aleksandr Demakin. All rights reserved.

package bufferpool

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nxgtw/go-bufferpool/internal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fmqProgName = "./internal/test/fmq"

func argsForStatusCommand(t *testing.T, obs *BufferStatusObserver, id ConnectionID, cmd string, args ...interface{}) []string {
	desc, err := obs.Open(id)
	require.NoError(t, err)
	data, err := desc.MarshalBinary()
	require.NoError(t, err)
	result := []string{fmqProgName, "-desc=" + testutil.BytesToString(data), cmd}
	for _, arg := range args {
		result = append(result, fmt.Sprint(arg))
	}
	return result
}

func TestStatusChannelInAnotherProcess(t *testing.T) {
	if testing.Short() {
		t.Skip("launches another process")
	}
	a := assert.New(t)
	obs := newTestObserver(t, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result := testutil.RunTestApp(ctx, argsForStatusCommand(t, obs, 11, "release", 11, 100, 10))
	require.NoError(t, result.Err, result.Output)
	a.Equal([]string{"8"}, result.Lines())

	ch := testutil.RunTestAppAsync(ctx, argsForStatusCommand(t, obs, 12, "status", 12, 11, 77, 5, int(TransferTo)))
	result = <-ch
	require.NoError(t, result.Err, result.Output)

	messages := obs.GetBufferStatusChanges()
	if !a.Len(messages, 9) {
		return
	}
	for i := 0; i < 8; i++ {
		a.Equal(BufferID(100+i), messages[i].BufferID)
		a.Equal(ConnectionID(11), messages[i].ConnectionID)
		a.Equal(NotUsed, messages[i].Status)
	}
	a.Equal(BufferStatusMessage{
		BufferID:           5,
		Status:             TransferTo,
		ConnectionID:       12,
		TargetConnectionID: 11,
		TransactionID:      77,
	}, messages[8])
}
