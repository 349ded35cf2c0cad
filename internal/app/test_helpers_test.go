package app

import (
	"context"
	"path/filepath"

	"github.com/stretchr/testify/mock"

	"github.com/andyballingall/aftercare/internal/config"
	"github.com/andyballingall/aftercare/internal/fs"
	"github.com/andyballingall/aftercare/internal/rewrite"
)

const testConfig = `
rewrite:
  extension: ".mjs"
  aliases: [core, shared]
count:
  extension: ".js"
`

type MockManager struct {
	mock.Mock
	config *config.Config
}

func newMockManager(root string) *MockManager {
	cfg := config.Default()
	cfg.Root = root
	return &MockManager{config: cfg}
}

func (m *MockManager) Config() *config.Config {
	return m.config
}

func (m *MockManager) Rewrite(ctx context.Context, root string, opts rewrite.Options,
	dryRun bool,
) (*rewrite.Summary, error) {
	args := m.Called(ctx, root, opts, dryRun)
	s, _ := args.Get(0).(*rewrite.Summary)
	return s, args.Error(1)
}

func (m *MockManager) WatchRewrite(ctx context.Context, root string, opts rewrite.Options,
	readyChan chan<- struct{},
) error {
	args := m.Called(ctx, root, opts, readyChan)
	return args.Error(0)
}

func (m *MockManager) Count(ctx context.Context, root string, opts CountOptions) error {
	args := m.Called(ctx, root, opts)
	return args.Error(0)
}

type mockEnvProvider struct {
	values map[string]string
}

func (m *mockEnvProvider) Get(key string) string {
	return m.values[key]
}

// mockPathResolver is a test implementation of fs.PathResolver.
type mockPathResolver struct {
	canonicalPathFn func(path string) (string, error)
	absFn           func(path string) (string, error)
}

func (m *mockPathResolver) CanonicalPath(path string) (string, error) {
	if m.canonicalPathFn != nil {
		return m.canonicalPathFn(path)
	}
	return fs.NewPathResolver().CanonicalPath(path)
}

func (m *mockPathResolver) Abs(path string) (string, error) {
	if m.absFn != nil {
		return m.absFn(path)
	}
	return filepath.Abs(path)
}
