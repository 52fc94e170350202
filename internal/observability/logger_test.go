package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/axiomqa/internal/observability"
)

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	observability.SetOutput(&buf)
	require.NoError(t, observability.SetLevel("info"))

	ctx := observability.WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", observability.RequestID(ctx))

	observability.LoggerFromContext(ctx).Info("hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "v", line["k"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	observability.SetOutput(&buf)
	t.Cleanup(func() { _ = observability.SetLevel("info") })

	require.NoError(t, observability.SetLevel("warn"))
	observability.Logger().Info("dropped")
	assert.Zero(t, buf.Len())

	require.NoError(t, observability.SetLevel("debug"))
	observability.Logger().Debug("kept")
	assert.Contains(t, buf.String(), "kept")

	assert.Error(t, observability.SetLevel("loud"))
}
