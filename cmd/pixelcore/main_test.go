package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redStrip = `
layout: {kind: strip, count: 4}
layers:
  - uid: red
    behavior: solid
    params: {color: "#ff0000"}
`

func writeProject(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "show.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderPrintsStableDigest(t *testing.T) {
	path := writeProject(t, redStrip)
	a, err := run(t, "render", path, "-n", "10")
	require.NoError(t, err)
	b, err := run(t, "render", path, "-n", "10")
	require.NoError(t, err)
	assert.Contains(t, a, "10 frames  4 pixels  sha256:")
	assert.Equal(t, a, b)
}

func TestRenderWritesFrames(t *testing.T) {
	path := writeProject(t, redStrip)
	dir := filepath.Join(t.TempDir(), "frames")
	_, err := run(t, "render", path, "-n", "3", "-o", dir, "--format", "ppm")
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "frame_00000.ppm", entries[0].Name())
}

func TestRenderRejectsBadSettings(t *testing.T) {
	path := writeProject(t, redStrip)
	_, err := run(t, "render", path, "--fps", "0")
	assert.Error(t, err)
	_, err = run(t, "render", path, "--audio", "energy=loud")
	assert.Error(t, err)
}

func TestCheckReportsFaults(t *testing.T) {
	out, err := run(t, "check", writeProject(t, redStrip))
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	bad := redStrip + "  - uid: ghost\n    behavior: missing\n"
	out, err = run(t, "check", writeProject(t, bad))
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "fault: layer ghost (missing)")
}

func TestCheckRejectsInvalidProject(t *testing.T) {
	_, err := run(t, "check", writeProject(t, "layout: {kind: ring}\n"))
	assert.Error(t, err)
}
