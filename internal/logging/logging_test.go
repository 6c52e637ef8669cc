// Copyright 2016 Aleksandr Demakin. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	a := assert.New(t)
	for name, expected := range map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
	} {
		lvl, err := ParseLevel(name)
		a.NoError(err, name)
		a.Equal(expected, lvl, name)
	}
	_, err := ParseLevel("loud")
	a.Error(err)
}

func TestNewLoggerJSON(t *testing.T) {
	a := assert.New(t)
	buf := bytes.NewBuffer(nil)
	logger, err := NewLogger(Config{Level: "warn", Format: "json", Output: buf})
	require.NoError(t, err)
	logger.Info().Msg("dropped")
	a.Equal(0, buf.Len())
	logger.Warn().Int64("connection_id", 42).Msg("queue is full")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	a.Equal("warn", line["level"])
	a.Equal("queue is full", line["message"])
	a.Equal(float64(42), line["connection_id"])
}

func TestNewLoggerText(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	logger, err := NewLogger(Config{Level: "debug", Format: "text", Output: buf, NoColor: true})
	require.NoError(t, err)
	logger.Debug().Str("queue", "q1").Msg("attached")
	assert.Contains(t, buf.String(), "queue=q1")
	assert.Contains(t, buf.String(), "attached")
}

func TestNewLoggerInvalidConfig(t *testing.T) {
	_, err := NewLogger(Config{Level: "info", Format: "xml"})
	assert.Error(t, err)
	_, err = NewLogger(Config{Level: "nope"})
	assert.Error(t, err)
}

func TestDefaultLogger(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	logger, err := NewLogger(Config{Format: "json", Output: buf})
	require.NoError(t, err)
	SetDefault(logger)
	l := Default()
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	SetDefault(Nop())
}
