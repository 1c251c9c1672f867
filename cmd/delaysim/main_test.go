package main

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/delaysim/internal/config"
	"github.com/san-kum/delaysim/internal/storage"
)

func TestMergeAssignments(t *testing.T) {
	got, err := mergeAssignments(nil, []string{"GT=4.2", " tau = 17 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"GT": 4.2, "tau": 17}, got)

	_, err = mergeAssignments(nil, []string{"GT"})
	assert.Error(t, err)
	_, err = mergeAssignments(nil, []string{"GT=abc"})
	assert.Error(t, err)
	_, err = mergeAssignments(nil, []string{"=1"})
	assert.Error(t, err)
}

func newTestCommand() *cobra.Command {
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "run"}
	addRunFlags(cmd)
	return cmd
}

func TestResolveConfigPresetWithOverrides(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("preset", "chaotic"))
	require.NoError(t, cmd.Flags().Set("dt", "0.05"))
	require.NoError(t, cmd.Flags().Set("set", "tau=20"))

	cfg, err := resolveConfig(cmd, []string{"mackey_glass"})
	require.NoError(t, err)
	assert.Equal(t, "mackey_glass", cfg.Model)
	assert.Equal(t, 0.05, cfg.Dt)
	assert.Equal(t, 1000.0, cfg.Duration, "unset flags keep the preset value")
	assert.Equal(t, 20.0, cfg.Params["tau"])
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("preset", "nope"))

	_, err := resolveConfig(cmd, []string{"hutchinson"})
	assert.Error(t, err)
}

func TestTimeLabel(t *testing.T) {
	assert.Equal(t, "t", timeLabel(1))
	assert.Equal(t, "t (h)", timeLabel(3600))
	assert.Equal(t, "t / 7", timeLabel(7))
}

func TestSaveRun(t *testing.T) {
	store := storage.New(t.TempDir(), nil)
	require.NoError(t, store.Init())
	defer store.Close()

	cfg := config.GetPreset("decay", "unit")
	require.NotNil(t, cfg)

	run, err := store.Create(cfg.Model)
	require.NoError(t, err)
	meta := &storage.RunMetadata{Kind: storage.KindRun, Model: cfg.Model}
	require.NoError(t, saveRun(store, run, cfg, meta, func() error { return nil }))

	saved, err := config.Load(run.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, cfg, saved)
	_, err = store.Load(run.ID)
	require.NoError(t, err)
}

func TestSaveRun_FailureRemovesDirectory(t *testing.T) {
	store := storage.New(t.TempDir(), nil)
	require.NoError(t, store.Init())
	defer store.Close()

	run, err := store.Create("decay")
	require.NoError(t, err)

	boom := errors.New("disk full")
	err = saveRun(store, run, config.DefaultConfig(), &storage.RunMetadata{Kind: storage.KindRun}, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = os.Stat(run.Dir)
	assert.True(t, os.IsNotExist(err))
	runs, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}
