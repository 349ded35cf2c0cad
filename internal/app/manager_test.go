package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/andyballingall/aftercare/internal/config"
	"github.com/andyballingall/aftercare/internal/rewrite"
)

func newTestCLIManager(root string, w io.Writer) *CLIManager {
	cfg := config.Default()
	cfg.Root = root
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCLIManager(logger, cfg, w)
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func readTree(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestLazyManager(t *testing.T) {
	t.Parallel()

	t.Run("panics before initialisation", func(t *testing.T) {
		t.Parallel()
		lazy := &LazyManager{}
		assert.False(t, lazy.HasInner())
		assert.Panics(t, func() { lazy.Config() })
	})

	t.Run("delegates to inner", func(t *testing.T) {
		t.Parallel()
		mgr := newMockManager("/root")
		lazy := &LazyManager{}
		lazy.SetInner(mgr)
		assert.True(t, lazy.HasInner())
		assert.Same(t, mgr.config, lazy.Config())

		ctx := context.Background()
		opts := rewrite.DefaultOptions()
		mgr.On("Rewrite", ctx, "r", opts, true).Return(&rewrite.Summary{Visited: 1}, nil)
		mgr.On("WatchRewrite", ctx, "r", opts, (chan<- struct{})(nil)).Return(nil)
		mgr.On("Count", ctx, "r", CountOptions{Extension: ".ts"}).Return(nil)

		s, err := lazy.Rewrite(ctx, "r", opts, true)
		require.NoError(t, err)
		assert.Equal(t, 1, s.Visited)
		require.NoError(t, lazy.WatchRewrite(ctx, "r", opts, nil))
		require.NoError(t, lazy.Count(ctx, "r", CountOptions{Extension: ".ts"}))
		mgr.AssertExpectations(t)
	})
}

func TestCLIManager_Rewrite(t *testing.T) {
	t.Parallel()

	t.Run("rewrites the tree", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"index.js":        "import { A } from 'core/a';\n",
			"core/a.js":       "export class A {\n}\n",
			"views/deep/v.js": "import { A } from 'core/a';\nexport class V extends A {\n}\n",
			"notes.txt":       "import x from 'core/x';\n",
		})

		m := newTestCLIManager(root, io.Discard)
		s, err := m.Rewrite(context.Background(), root, rewrite.DefaultOptions(), false)
		require.NoError(t, err)
		assert.Equal(t, &rewrite.Summary{Visited: 3, Changed: 3}, s)

		assert.Equal(t, "import { A } from 'core/a.js';\n", readTree(t, root, "index.js"))
		assert.Equal(t, "export class A {\n"+
			"    defaults() { return {}; }\n"+
			"    mutabilities() { return {}; }\n"+
			"}\n", readTree(t, root, "core/a.js"))
		assert.Contains(t, readTree(t, root, "views/deep/v.js"), "import { A } from '../../core/a.js';\n")
		assert.Equal(t, "import x from 'core/x';\n", readTree(t, root, "notes.txt"))

		again, err := m.Rewrite(context.Background(), root, rewrite.DefaultOptions(), false)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Changed)
	})

	t.Run("dry run writes a diff and leaves files alone", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{"sub/a.js": "import b from 'core/b';\n"})

		var out bytes.Buffer
		m := newTestCLIManager(root, &out)
		s, err := m.Rewrite(context.Background(), root, rewrite.DefaultOptions(), true)
		require.NoError(t, err)
		assert.Equal(t, 1, s.Changed)
		assert.Equal(t, "import b from 'core/b';\n", readTree(t, root, "sub/a.js"))
		assert.Contains(t, out.String(), "+import b from '../core/b.js';")
	})

	t.Run("error names the stopping point", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.js": "import x from \"./x\";\n"})

		m := newTestCLIManager(root, io.Discard)
		_, err := m.Rewrite(context.Background(), root, rewrite.DefaultOptions(), false)
		var mErr *rewrite.MalformedInputError
		require.ErrorAs(t, err, &mErr)
		assert.Contains(t, err.Error(), "stopped after 1 files")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.js": "import x from './x';\n"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		m := newTestCLIManager(root, io.Discard)
		_, err := m.Rewrite(ctx, root, rewrite.DefaultOptions(), false)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCLIManager_WatchRewrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "import x from './x';\n"})

	m := newTestCLIManager(root, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.WatchRewrite(ctx, root, rewrite.DefaultOptions(), ready)
	}()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never became ready")
	}

	// The initial pass has already run.
	assert.Equal(t, "import x from './x.js';\n", readTree(t, root, "a.js"))

	writeTree(t, root, map[string]string{"b.js": "import y from 'core/y';\n"})
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(root, "b.js"))
		return err == nil && string(data) == "import y from 'core/y.js';\n"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestCLIManager_Count(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.ts":     "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n",
		"b.ts":     "",
		"sub/c.ts": "1\n2\n3\n4\n5",
		"d.js":     "ignored\n",
	})

	t.Run("text total", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		m := newTestCLIManager(root, &out)
		require.NoError(t, m.Count(context.Background(), root, CountOptions{Extension: ".ts", Format: "text"}))
		assert.Equal(t, "15\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		m := newTestCLIManager(root, &out)
		require.NoError(t, m.Count(context.Background(), root,
			CountOptions{Extension: ".ts", Workers: 2, Format: "json"}))
		assert.Equal(t, int64(15), gjson.Get(out.String(), "total").Int())
		assert.Equal(t, int64(3), gjson.Get(out.String(), "files.#").Int())
		assert.Equal(t, ".ts", gjson.Get(out.String(), "extension").String())
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		m := newTestCLIManager(root, &out)
		require.NoError(t, m.Count(context.Background(), root,
			CountOptions{Extension: ".ts", Format: "text", Verbose: true}))
		assert.Contains(t, out.String(), "a.ts")
		assert.Contains(t, out.String(), "total (3 files)")
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		m := newTestCLIManager(root, io.Discard)
		err := m.Count(context.Background(), filepath.Join(root, "missing"), CountOptions{Extension: ".ts"})
		require.Error(t, err)
	})
}
