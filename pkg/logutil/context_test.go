package logutil

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := new(bytes.Buffer)
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })

	return buf
}

func TestGetSubsystem(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetSubsystem(ctx))

	ctx = Start(ctx, "docsite")
	assert.Equal(t, "/docsite", GetSubsystem(ctx))

	ctx = Start(ctx, "watch")
	assert.Equal(t, "/docsite/watch", GetSubsystem(ctx))
}

func TestWithField(t *testing.T) {
	buf := captureDefault(t)

	ctx := Start(context.Background(), "upload")
	ctx = WithField(ctx, "file", "demo.tgz")

	Get(ctx).Info("uploading")

	assert.Contains(t, buf.String(), "file=demo.tgz")
	assert.Contains(t, buf.String(), "subsystem=/upload")
}

func TestWithFields(t *testing.T) {
	buf := captureDefault(t)

	ctx := Start(context.Background(), "package")
	ctx = WithFields(ctx, map[string]any{
		"filename": "demo-v1.0.0.deb",
		"kind":     "deb",
	})

	Get(ctx).Info("creating artifact")

	assert.Contains(t, buf.String(), "filename=demo-v1.0.0.deb")
	assert.Contains(t, buf.String(), "kind=deb")
}

func TestUpdateWithoutStart(t *testing.T) {
	// Update on a plain context is a no-op instead of a panic.
	ctx := context.Background()
	assert.Equal(t, ctx, Update(ctx, Field("ignored", true)))
}

func TestFromStruct(t *testing.T) {
	in := struct {
		Filename string            `logfield:"filename"`
		Kind     string            `logfield:"kind"`
		Binaries map[string]string `logfield:"-"`
	}{
		Filename: "demo-v1.0.0.tgz",
		Kind:     "tgz",
		Binaries: map[string]string{"demo": "demo-v1.0.0-linux-amd64"},
	}

	assert.Equal(t, map[string]any{
		"filename": "demo-v1.0.0.tgz",
		"kind":     "tgz",
	}, FromStruct(in))
}
