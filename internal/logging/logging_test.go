package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "ingester", false)

	logger.Debug().Msg("hidden")
	logger.Info().Str("source", "cfpb").Msg("source finished")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "source finished")
	assert.Contains(t, out, "component=ingester")
	assert.Contains(t, out, "source=cfpb")
}

func TestNewWithWriter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "ft3-mapper", true)
	logger.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
