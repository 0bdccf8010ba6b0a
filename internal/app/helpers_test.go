package app_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/compplan/internal/adapters/fs"
	"go.trai.ch/compplan/internal/adapters/manifest"
	"go.trai.ch/compplan/internal/app"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// project is a managed root with one entry directory and an output root beside it.
type project struct {
	base     string
	root     string
	out      string
	settings *domain.Settings
}

func newProject(t *testing.T) *project {
	t.Helper()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	p := &project{
		base: base,
		root: filepath.Join(base, "app"),
		out:  filepath.Join(base, "out"),
	}
	p.touch(t, "widgets", "Foo.jsx")
	p.settings = &domain.Settings{
		ProcessRoot:     base,
		ManagedRoot:     p.root,
		OutputRoot:      p.out,
		LibraryName:     "React4xp",
		EntryDirs:       "widgets",
		EntryExtensions: "jsx",
		TemplatePackage: "react4xp-templates",
	}
	return p
}

func (p *project) touch(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{p.root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

type appMocks struct {
	loader    *mocks.MockConfigLoader
	logger    *mocks.MockLogger
	overrides *mocks.MockOverrideFactory
	watcher   *mocks.MockWatcher
}

// newApp builds an App on the real filesystem adapters with mocked edges.
func newApp(ctrl *gomock.Controller) (*app.App, *appMocks) {
	m := &appMocks{
		loader:    mocks.NewMockConfigLoader(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		overrides: mocks.NewMockOverrideFactory(ctrl),
		watcher:   mocks.NewMockWatcher(ctrl),
	}
	a := app.New(m.loader, m.logger, fs.NewWalker(), manifest.NewStore(), fs.NewHasher(), m.overrides, m.watcher)
	return a, m
}

// messages collects Info and Warn output. Error calls are not expected.
type messages struct {
	mu   sync.Mutex
	list []string
}

func (m *messages) expect(log *mocks.MockLogger) {
	record := func(msg string) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.list = append(m.list, msg)
	}
	log.EXPECT().Info(gomock.Any()).Do(record).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).Do(record).AnyTimes()
}

func (m *messages) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.list...)
}
