package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"folio/app/config"
	"folio/app/models"
	"folio/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		done <- true
	}()

	f()
	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String()
}

func mockStdin(input string, f func()) {
	oldStdin := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r

	// Write input in a goroutine to avoid blocking
	go func() {
		w.Write([]byte(input))
		w.Close()
	}()

	f()

	os.Stdin = oldStdin
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Port:                "0",
		AllowedOrigins:      []string{"http://localhost:8000"},
		RequestTimeout:      5 * time.Second,
		Store:               config.StoreFile,
		DataFile:            filepath.Join(dir, "posts.json"),
		BadgerPath:          filepath.Join(dir, "badger"),
		BackupFile:          filepath.Join(dir, "posts.backup.json"),
		AWSRegion:           "us-east-1",
		CommentsAutoApprove: true,
		RateLimit:           20,
		RateLimitWindow:     time.Minute,
		SiteTitle:           "Blog",
		SiteURL:             "http://localhost:8000",
	}
}

func useConfig(t *testing.T, cfg *config.Config) {
	old := loadConfig
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	t.Cleanup(func() { loadConfig = old })
}

func seedFileStore(t *testing.T, path string, titles ...string) {
	t.Helper()
	store, err := repositories.NewFileStore(path, "")
	require.NoError(t, err)
	for _, title := range titles {
		post := models.NewPost(&models.PostPatch{Title: &title})
		require.NoError(t, store.Create(context.Background(), post))
	}
}

func badgerStats(t *testing.T, path string) models.Stats {
	t.Helper()
	store, err := repositories.OpenBadgerStore(path)
	require.NoError(t, err)
	defer store.Close()
	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	return stats
}

func TestHandleCommand(t *testing.T) {
	useConfig(t, testConfig(t))

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: folio <command>",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: folio <command>",
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown command: unknown",
			expectedExit:   1,
		},
		{
			name:           "restore without file",
			args:           []string{"restore"},
			expectedOutput: "Error: backup file path required for restore",
			expectedExit:   1,
		},
		{
			name:           "stats on empty store",
			args:           []string{"stats"},
			expectedOutput: "Posts:     0",
			expectedExit:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitCode int
			output := captureOutput(func() {
				exitCode = HandleCommand(tt.args)
			})

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestInvalidConfiguration(t *testing.T) {
	old := loadConfig
	loadConfig = func() (*config.Config, error) { return nil, assert.AnError }
	defer func() { loadConfig = old }()

	var code int
	output := captureOutput(func() {
		code = HandleCommand([]string{"stats"})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "Error: "+assert.AnError.Error())
}

func TestBackupAndRestore(t *testing.T) {
	cfg := testConfig(t)
	useConfig(t, cfg)
	seedFileStore(t, cfg.DataFile, "First", "Second")
	target := filepath.Join(t.TempDir(), "snapshot.json")

	t.Run("backup to file", func(t *testing.T) {
		var code int
		output := captureOutput(func() {
			code = runBackup([]string{target})
		})
		assert.Equal(t, 0, code)
		assert.Contains(t, output, "Posts backed up successfully to file:"+target)
		assert.FileExists(t, target)
	})

	// Restore into an empty badger store.
	cfg.Store = config.StoreBadger

	t.Run("restore non-existent backup", func(t *testing.T) {
		var code int
		output := captureOutput(func() {
			code = restore(filepath.Join(t.TempDir(), "missing.json"))
		})
		assert.Equal(t, 1, code)
		assert.Contains(t, output, "cannot be read")
	})

	t.Run("restore to empty store", func(t *testing.T) {
		var code int
		output := captureOutput(func() {
			code = restore(target)
		})
		assert.Equal(t, 0, code)
		assert.Contains(t, output, "Restored 2 posts successfully")
		assert.Equal(t, models.Stats{TotalPosts: 2}, badgerStats(t, cfg.BadgerPath))
	})

	t.Run("restore over existing posts - cancelled", func(t *testing.T) {
		var code int
		var output string
		mockStdin("n\n", func() {
			output = captureOutput(func() {
				code = restore(target)
			})
		})
		assert.Equal(t, 1, code)
		assert.Contains(t, output, "already holds 2 posts")
		assert.Contains(t, output, "Operation cancelled")
	})

	t.Run("restore over existing posts - confirmed", func(t *testing.T) {
		var code int
		var output string
		mockStdin("y\n", func() {
			output = captureOutput(func() {
				code = restore(target)
			})
		})
		assert.Equal(t, 0, code)
		assert.Contains(t, output, "Restored 2 posts successfully")
		// Same ids, so nothing is duplicated.
		assert.Equal(t, models.Stats{TotalPosts: 2}, badgerStats(t, cfg.BadgerPath))
	})
}

func TestRestoreRejectsEmptySnapshot(t *testing.T) {
	cfg := testConfig(t)
	useConfig(t, cfg)
	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0644))

	var code int
	output := captureOutput(func() {
		code = restore(empty)
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "Backup contains no posts")
}

func TestMigrate(t *testing.T) {
	cfg := testConfig(t)
	useConfig(t, cfg)

	legacy := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`[
  {"id": "1700000000001", "title": "Old one", "published": true, "views": 4},
  null,
  {"id": "1700000000002", "title": "Old two", "published": false}
]`), 0644))

	t.Run("refuses to migrate the file store into itself", func(t *testing.T) {
		var code int
		output := captureOutput(func() {
			code = migrate(nil)
		})
		assert.Equal(t, 1, code)
		assert.Contains(t, output, "set STORE to badger or mongodb")
	})

	t.Run("imports into badger", func(t *testing.T) {
		cfg.Store = config.StoreBadger
		var code int
		output := captureOutput(func() {
			code = migrate([]string{legacy})
		})
		assert.Equal(t, 0, code)
		assert.Contains(t, output, "Migrated 2 posts from "+legacy+" into the badger store")

		store, err := repositories.OpenBadgerStore(cfg.BadgerPath)
		require.NoError(t, err)
		defer store.Close()
		id, err := models.ParseID("1700000000001")
		require.NoError(t, err)
		post, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Old one", post.Title)
		assert.Equal(t, int64(4), post.Views)
	})

	t.Run("stats reflect the migration", func(t *testing.T) {
		var code int
		output := captureOutput(func() {
			code = stats()
		})
		assert.Equal(t, 0, code)
		assert.Contains(t, output, "Store:     badger")
		assert.Contains(t, output, "Posts:     2")
		assert.Contains(t, output, "Published: 1")
	})
}

func TestOpenSnapshotRejectsBadS3URL(t *testing.T) {
	_, err := openSnapshot(context.Background(), testConfig(t), "s3://bucket-only")
	assert.ErrorContains(t, err, "expected s3://bucket/key")
}
