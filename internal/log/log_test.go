package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"log/slog"
)

func TestRedactionPasswordField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "password", "hunter2")
	require.Equal(t, "[REDACTED]", out["password"])
}

func TestRedactionSaltField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "salt", "c2FsdHktc2FsdA==")
	require.Equal(t, "[REDACTED]", out["salt"])
}

func TestRedactionHashField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "hash", "deadbeef")
	require.Equal(t, "[REDACTED]", out["hash"])
}

func TestRedactionSecretField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "secret", "abc123")
	require.Equal(t, "[REDACTED]", out["secret"])
}

func TestRedactionTokenField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "token", "abc.token.xyz")
	require.Equal(t, "[REDACTED]", out["token"])
}

func TestRedactionAuthorizationField(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "authorization", "Basic YWRtaW46c2VjcmV0")
	require.Equal(t, "[REDACTED]", out["authorization"])
}

func TestRedactionNestedGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewRedactingHandler(base))
	logger.Info("test", slog.Group("login", "user", "admin", "password", "hunter2"))

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	group, ok := out["login"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "admin", group["user"])
	require.Equal(t, "[REDACTED]", group["password"])
}

func TestNonSensitiveFieldsPassThrough(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "user", "admin")
	require.Equal(t, "admin", out["user"])
}

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "schiller.log")
	logger, closeFn, err := New("info", logPath)
	require.NoError(t, err)

	logger.Info("startup", "password", "never-this")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "[REDACTED]")
	require.NotContains(t, string(data), "never-this")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, _, err := New("loud", "")
	require.Error(t, err)
}

func TestLogRotationCreatesNewFileAfterLimit(t *testing.T) {
	logDir := t.TempDir()
	logPath := filepath.Join(logDir, "schiller.log")

	writer, err := NewRotatingWriter(RotationConfig{
		File:      logPath,
		MaxSizeMB: 10,
		MaxFiles:  5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	chunk := bytes.Repeat([]byte("a"), 1024*1024)
	for i := 0; i < 11; i++ {
		_, err = writer.Write(chunk)
		require.NoError(t, err)
	}

	files, err := filepath.Glob(filepath.Join(logDir, "schiller*"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(files), 2)
}

func logSingleField(t *testing.T, key, value string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewRedactingHandler(base))
	logger.Info("test", key, value)

	line := bytes.TrimSpace(buf.Bytes())
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(line, &out))
	return out
}
