package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/twitch-helix-go/internal/events"
)

type emitterSource struct {
	*events.Emitter
}

func (s emitterSource) On(kind events.Kind, h events.Handler) func() {
	return s.Subscribe(kind, h)
}

func TestAttachForwardsEvents(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := Setup(Config{Level: slog.LevelWarn, Output: &buf, Name: "helix"})
	require.NoError(t, err)

	em := events.New()
	detach := log.Attach(emitterSource{em})

	em.Info("Helix request completed", "path", "/users")
	em.Warn("Retrying Helix request", "path", "/streams", "attempt", "2/4")
	em.Error("Helix request rejected", "status", 400)

	out := buf.String()
	assert.NotContains(t, out, "Helix request completed", "info is below the configured level")
	assert.Contains(t, out, "WARN - [helix] Retrying Helix request path=/streams attempt=2/4")
	assert.Contains(t, out, "ERROR - [helix] Helix request rejected status=400")
	assert.NotContains(t, out, "\033[")

	detach()
	buf.Reset()
	em.Error("after detach")
	assert.Empty(t, buf.String())
	assert.Zero(t, em.Subscribers(events.KindError))
}

func TestColoredOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := Setup(Config{Level: slog.LevelInfo, Colored: true, Output: &buf})
	require.NoError(t, err)

	log.Info("lookup", "path", "/clips")
	out := buf.String()
	assert.Contains(t, out, colorGreen+"INFO"+colorReset)
	assert.Contains(t, out, "path="+colorMagenta+"/clips"+colorReset)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestGroupsQualifyKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := Setup(Config{Level: slog.LevelInfo, Output: &buf})
	require.NoError(t, err)

	log.With("resolver", "users").WithGroup("request").Info("done",
		"status", 200, slog.Group("retry", "attempt", 2))

	out := buf.String()
	assert.Contains(t, out, "done resolver=users request.status=200 request.retry.attempt=2")
}

func TestFileHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var buf bytes.Buffer
	log, err := Setup(Config{Level: slog.LevelError, FileLevel: slog.LevelDebug, LogDir: dir, Name: "cli", Output: &buf})
	require.NoError(t, err)

	log.Debug("only in the file")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
