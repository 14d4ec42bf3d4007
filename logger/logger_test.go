package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		rec := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))

		out = append(out, rec)
	}

	return out
}

func TestGetAddsContextValues(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ConfigureLoggingWithOptions(Options{Subsystem: "test", JSON: true, Output: &buf})

	ctx := WithSession(t.Context(), "boot-1")
	ctx = With(ctx, "state", "Idle")
	Get(ctx).Info("with session")

	Get(WithSubsystem(t.Context(), "overridden")).Info("overridden subsystem")
	Get().Info("no context")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 3)

	assert.Equal(t, "test", recs[0]["subsystem"])
	assert.Equal(t, "boot-1", recs[0]["session_id"])
	assert.Equal(t, "Idle", recs[0]["state"])
	assert.Equal(t, "overridden", recs[1]["subsystem"])
	assert.NotContains(t, recs[2], "session_id")
}

func TestMuted(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ConfigureLoggingWithOptions(Options{Subsystem: "test", JSON: true, Output: &buf})

	Get(WithMuted(t.Context(), true)).Error("never printed")
	Get(WithMuted(t.Context(), false)).Info("printed")

	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestLegacyRedirect(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	ConfigureLoggingWithOptions(Options{
		Subsystem:   "test",
		JSON:        true,
		MinLevel:    slog.LevelDebug,
		LegacyLevel: slog.LevelInfo,
		Output:      &buf,
	})

	log.Println("legacy line")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "legacy line", recs[0]["msg"])
}

func TestConfigureLoggingFromEnv(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	t.Setenv("LOG_JSON", "true")
	t.Setenv("LOG_LEVEL", "warn")

	logger, err := ConfigureLogging("dispenser", WithOutput(&buf))
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "kept", recs[0]["msg"])
	assert.Equal(t, "dispenser", GetSubsystem(context.Background()))
}

func TestConfigureLoggingBadOutput(t *testing.T) { //nolint:paralleltest
	t.Setenv("LOG_OUTPUT", "printer")

	_, err := ConfigureLogging("dispenser")
	require.ErrorIs(t, err, ErrInvalidLogOutput)
}
