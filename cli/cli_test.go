package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokinpui/ghost/internal/config"
	"github.com/sokinpui/ghost/internal/llm"
	"github.com/sokinpui/ghost/internal/vcs"
	"github.com/sokinpui/ghost/model"
)

func TestParseFlagsDefaultsDoNotOverride(t *testing.T) {
	flags, err := ParseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Mode = model.ModePatch
	cfg.Model = "from-yaml"
	cfg.ConfirmReplace = false
	flags.Apply(&cfg)

	require.Equal(t, model.ModePatch, cfg.Mode)
	require.Equal(t, "from-yaml", cfg.Model)
	require.False(t, cfg.ConfirmReplace)
	require.Equal(t, 0, cfg.History)
}

func TestParseFlagsApply(t *testing.T) {
	flags, err := ParseFlags([]string{
		"--mode", "patch",
		"-d", "add a backups section",
		"--doc", "docs/OPS.md",
		"--provider", "openai",
		"--temperature", "0.3",
		"--confirm-replace=false",
		"--vcs", "go-git",
		"--no-animation",
		"--history", "5",
		"-v",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Model = "gemini-flash-latest"
	flags.Apply(&cfg)

	require.Equal(t, model.ModePatch, cfg.Mode)
	require.Equal(t, "add a backups section", cfg.Directive)
	require.Equal(t, "docs/OPS.md", cfg.Document)
	require.Equal(t, llm.ProviderOpenAI, cfg.Provider)
	require.Empty(t, cfg.Model, "switching provider drops the previous default model")
	require.Equal(t, 0.3, cfg.Temperature)
	require.False(t, cfg.ConfirmReplace)
	require.Equal(t, vcs.BackendGoGit, cfg.VCS)
	require.True(t, cfg.NoAnimation)
	require.Equal(t, 5, cfg.History)
	require.True(t, cfg.Verbose)
}

func TestParseFlagsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--nope"},
		{"stray"},
		{"--history", "-1"},
		{"--temperature", "warm"},
	} {
		_, err := ParseFlags(args, &bytes.Buffer{})
		require.Error(t, err, "%v", args)
	}
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	_, err := ParseFlags([]string{"--help"}, &out)
	require.Error(t, err)
	require.Contains(t, out.String(), "Usage: ghost [flags]")
	require.Contains(t, out.String(), "--mode")
}
