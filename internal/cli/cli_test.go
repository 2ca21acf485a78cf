package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/extbind/internal/announce"
	"github.com/vk/extbind/internal/app"
)

func TestParse(t *testing.T) {
	args := []string{
		"-e", `Servactory::HelloRust::hello("a")`,
		"-e", `Servactory.HelloRust.VERSION`,
		"-manifest", "manifests",
		"-log-format", "JSON",
		"-log-level", "debug",
		"-healthcheck-port", "8080",
		"-announce-url", "http://localhost:3000/socket.io/",
		"-announce-namespace", "/ext",
		"-announce-timeout", "3s",
		"-announce-event", "ext:up",
		"-announce-ack-event", "ext:ack",
		"-announce-insecure",
		"script.hcl",
	}
	cfg, shouldExit, err := Parse(args, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	want := &app.Config{
		ManifestPath:      "manifests",
		Exprs:             []string{`Servactory::HelloRust::hello("a")`, `Servactory.HelloRust.VERSION`},
		ScriptPath:        "script.hcl",
		LogFormat:         "json",
		LogLevel:          "debug",
		HealthcheckPort:   8080,
		AnnounceURL:       "http://localhost:3000/socket.io/",
		AnnounceNamespace: "/ext",
		AnnounceEvent:     "ext:up",
		AnnounceAckEvent:  "ext:ack",
		AnnounceTimeout:   3 * time.Second,
		AnnounceInsecure:  true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, shouldExit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Empty(t, cfg.Exprs)
	assert.Empty(t, cfg.ScriptPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, announce.DefaultTimeout, cfg.AnnounceTimeout)
	assert.Equal(t, announce.DefaultEvent, cfg.AnnounceEvent)
	assert.Empty(t, cfg.AnnounceAckEvent)
	assert.False(t, cfg.AnnounceInsecure)
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantMsg: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace"}, wantMsg: "invalid log-level"},
		{name: "two scripts", args: []string{"a.hcl", "b.hcl"}, wantMsg: "expected at most one script path"},
		{name: "bad port", args: []string{"-healthcheck-port", "-1"}, wantMsg: "out of range"},
		{name: "namespace without url", args: []string{"-announce-namespace", "/ext"}, wantMsg: "require AnnounceURL"},
		{name: "ack without url", args: []string{"-announce-ack-event", "ext:ack"}, wantMsg: "require AnnounceURL"},
		{name: "bad duration", args: []string{"-announce-timeout", "soon"}, wantMsg: "invalid value"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)

			exitErr, ok := err.(*ExitError)
			require.True(t, ok, "expected *ExitError, got %T", err)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
