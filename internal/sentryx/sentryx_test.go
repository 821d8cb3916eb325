package sentryx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitEmptyDSNDisables(t *testing.T) {
	require.NoError(t, Init("", "test", ""))
	assert.False(t, enabled)

	// All helpers must be safe while disabled.
	CaptureException(errors.New("boom"), map[string]any{"guild": "g1"})
	CaptureException(nil, nil)
	Flush(time.Millisecond)
}

func TestRecoverRepanics(t *testing.T) {
	require.NoError(t, Init("", "test", ""))

	assert.PanicsWithValue(t, "boom", func() {
		defer Recover()
		panic("boom")
	})
}
