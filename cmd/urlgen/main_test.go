package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Flags(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{
		"-ingest-domain", "push.example.com",
		"-stream-domain", "pull.example.com",
		"-templates", "lhd",
		"-app", "live",
		"-stream", "123",
	}, &out)
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "----- Stream URLs:\nrtmp://pull.example.com/live/123\nrtmp://pull.example.com/live/123_lhd\n\n"))
	assert.True(t, strings.HasSuffix(s, "----- Ingest URL:\nrtmp://push.example.com/live/123\n"))
	assert.NotContains(t, s, "auth_key")
}

func TestRun_ExampleWithOverride(t *testing.T) {
	t.Setenv("URLGEN_CONFIG", "")
	var out bytes.Buffer
	err := run([]string{
		"-example",
		"-config", filepath.Join(t.TempDir(), "missing.yaml"),
		"-stream", "999",
		"-stream-key", "",
	}, &out)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "http://pull.example.com/live/999_lsd.m3u8\n")
	assert.Contains(t, s, "rtmp://push.example.com/live/999?auth_key=")
	assert.Equal(t, 1, strings.Count(s, "auth_key="))
}

func TestRun_BadFlag(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"-nope"}, &out))
}
