package main

import (
	"bytes"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/vecspool/checkpoint"
	"github.com/poiesic/vecspool/core"
	"github.com/poiesic/vecspool/recovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"vecspool"}, args...))
	return out.String(), err
}

func findCommand(t *testing.T, name string) *cli.Command {
	t.Helper()
	for _, cmd := range newApp().Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func TestCommandFlags(t *testing.T) {
	t.Run("db is required", func(t *testing.T) {
		_, err := runApp(t, "build")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		var hostFlag *cli.StringFlag
		for _, f := range findCommand(t, "build").Flags {
			if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "embedding-host" {
				hostFlag = sf
			}
		}
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("every command is wired", func(t *testing.T) {
		for _, name := range []string{"ingest", "build", "recover", "status", "search"} {
			assert.NotNil(t, findCommand(t, name).Action, name)
		}
	})
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"INFO", false},
		{"warn", false},
		{"error", false},
		{"verbose", true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			set.String("log-level", tt.level, "")
			err := setupLogger(cli.NewContext(newApp(), set, nil))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseMetadata(t *testing.T) {
	meta, err := parseMetadata([]string{"source=notes.txt", "lang=en", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"source": "notes.txt", "lang": "en", "empty": ""}, meta)

	meta, err = parseMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, meta)

	_, err = parseMetadata([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseMetadata([]string{"=value"})
	assert.Error(t, err)
}

func TestRecoverCommand(t *testing.T) {
	dir := t.TempDir()
	w, err := checkpoint.Create(dir, "abc")
	require.NoError(t, err)
	require.NoError(t, w.Write(&core.EmbeddingBatch{Ids: []core.ID{1, 2}, Vectors: [][]float32{{1, 0, 0}, {0, 1, 0}}}))
	require.NoError(t, w.Write(&core.EmbeddingBatch{Ids: []core.ID{3}, Vectors: [][]float32{{0, 0, 1}}}))
	require.NoError(t, w.Close())

	out, err := runApp(t, "recover", "--checkpoint-dir", dir, "--vectors-id", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "2 batches, 3 vectors, 3 dimensions")

	// A dry run leaves the checkpoint in place and cleans up the snapshot.
	assert.FileExists(t, checkpoint.Path(dir, "abc"))
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))
}

func TestRecoverCommand_NoCheckpoint(t *testing.T) {
	out, err := runApp(t, "recover", "--checkpoint-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No checkpoint")
}

func TestRecoverCommand_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(checkpoint.Path(dir, "abc"), []byte("garbage"), 0o644))

	_, err := runApp(t, "recover", "--checkpoint-dir", dir, "--vectors-id", "abc")
	assert.ErrorIs(t, err, checkpoint.ErrCorruptFrame)
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))
}

func TestRecoverCommand_SnapshotName(t *testing.T) {
	dir := t.TempDir()
	w, err := checkpoint.Create(dir, checkpoint.RecoveryName)
	require.NoError(t, err)
	require.NoError(t, w.Write(&core.EmbeddingBatch{Ids: []core.ID{1}, Vectors: [][]float32{{1, 0}}}))
	require.NoError(t, w.Close())

	_, err = runApp(t, "recover", "--checkpoint-dir", dir, "--vectors-id", checkpoint.RecoveryName)
	assert.ErrorIs(t, err, recovery.ErrSnapshotIsSource)
	assert.FileExists(t, checkpoint.RecoveryPath(dir))
}

func TestRecoverCommand_WarnsAboutConcurrentBuilds(t *testing.T) {
	cmd := findCommand(t, "recover")
	assert.Contains(t, cmd.Description, "do not run this while a build uses the same checkpoint directory")
}

func TestIngestAndStatusCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db")
	input := filepath.Join(t.TempDir(), "docs.txt")
	require.NoError(t, os.WriteFile(input, []byte("alpha\nbeta\n\nalpha\ngamma\n"), 0o644))

	out, err := runApp(t, "ingest", "--db", dbPath, "--file", input, "--meta", "source=docs.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Read 4 lines, added 3 documents")

	out, err = runApp(t, "status", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 3")
	assert.Contains(t, out, "never run")
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	_, err := runApp(t, "search", "--db", filepath.Join(t.TempDir(), "db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestBuildCommand_BadCompression(t *testing.T) {
	_, err := runApp(t, "build", "--db", filepath.Join(t.TempDir(), "db"), "--compression", "brotli")
	assert.ErrorIs(t, err, checkpoint.ErrUnknownCompression)
}
