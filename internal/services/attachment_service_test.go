package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"reportdesk/internal/config"
	"reportdesk/internal/observability"
	contextutils "reportdesk/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

func TestAttachmentService_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	saver := NewAttachmentService(dir, newTestLogger())

	path, err := saver.Save(context.Background(), "screen shot.png", []byte("png-bytes"))
	require.NoError(t, err)
	require.NotEmpty(t, path)

	// Filename carries the timestamp prefix and underscores replace spaces
	assert.Regexp(t, `^\d{8}-\d{6}_screen_shot\.png$`, filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestAttachmentService_Save_NoData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	saver := NewAttachmentService(dir, newTestLogger())

	path, err := saver.Save(context.Background(), "notes.txt", nil)
	require.NoError(t, err)
	assert.Empty(t, path)

	// No directory or file may appear when nothing was uploaded
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAttachmentService_Save_StripsDirectoryComponents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	saver := NewAttachmentService(dir, newTestLogger())

	path, err := saver.Save(context.Background(), "../outside/report copy.pdf", []byte("pdf"))
	require.NoError(t, err)

	// The stored file stays inside the uploads directory under the base name
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Regexp(t, `^\d{8}-\d{6}_report_copy\.pdf$`, filepath.Base(path))
}

func TestAttachmentService_Save_SameSecondOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	saver := NewAttachmentService(dir, newTestLogger())

	first, err := saver.Save(context.Background(), "log.txt", []byte("first"))
	require.NoError(t, err)
	second, err := saver.Save(context.Background(), "log.txt", []byte("second"))
	require.NoError(t, err)

	// Unless the two writes straddled a second boundary they target the same
	// path and the later write wins
	if first == second {
		data, readErr := os.ReadFile(second)
		require.NoError(t, readErr)
		assert.Equal(t, []byte("second"), data)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(entries), 2)
}

func TestAttachmentService_Save_WriteFailure(t *testing.T) {
	// A regular file where the uploads directory should be makes MkdirAll fail
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	saver := NewAttachmentService(filepath.Join(blocker, "uploads"), newTestLogger())

	_, err := saver.Save(context.Background(), "a.txt", []byte("data"))
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrAttachmentWrite))
}
