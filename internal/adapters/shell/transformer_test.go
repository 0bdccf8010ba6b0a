package shell_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/compplan/internal/adapters/shell"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func samplePlan() *domain.Plan {
	entries := domain.NewEntryMap()
	entries.Add("widgets/Foo", "/srv/app/widgets/Foo.jsx")
	entries.Add("App", "/srv/app/_entries/App.jsx")
	return &domain.Plan{
		Mode:  domain.ModeProduction,
		Entry: entries,
		Output: domain.Output{
			Path:          "/srv/out",
			Filename:      "[name].js",
			ChunkFilename: "[name].[contenthash:9].js",
		},
	}
}

func TestTransformer_PassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	transform := shell.NewTransformer(mocks.NewMockLogger(ctrl)).
		CommandOverride([]string{"cat"}, t.TempDir())

	plan, err := transform(context.Background(), nil, samplePlan())
	require.NoError(t, err)
	assert.Equal(t, []string{"widgets/Foo", "App"}, plan.Entry.Names())
	assert.Equal(t, "/srv/out", plan.Output.Path)
	assert.Equal(t, "[name].[contenthash:9].js", plan.Output.ChunkFilename)
}

func TestTransformer_Environment(t *testing.T) {
	ctrl := gomock.NewController(t)
	script := `cat >/dev/null; printf '{"mode":"development","externals":{"target":"%s","api":"%s"}}' "$COMPPLAN_ENV_TARGET" "$COMPPLAN_ENV_API_URL"`
	transform := shell.NewTransformer(mocks.NewMockLogger(ctrl)).
		CommandOverride([]string{"sh", "-c", script}, t.TempDir())

	plan, err := transform(context.Background(), map[string]string{
		"target":  "cdn",
		"api.url": "https://example.test",
	}, samplePlan())
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDevelopment, plan.Mode)
	assert.Equal(t, map[string]string{"target": "cdn", "api": "https://example.test"}, plan.Externals)
}

func TestTransformer_WorkingDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	script := `cat >/dev/null; printf '{"output":{"path":"%s"}}' "$(pwd -P)"`
	transform := shell.NewTransformer(mocks.NewMockLogger(ctrl)).
		CommandOverride([]string{"sh", "-c", script}, dir)

	plan, err := transform(context.Background(), nil, samplePlan())
	require.NoError(t, err)
	assert.Equal(t, dir, plan.Output.Path)
}

func TestTransformer_StderrIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn("override: part1part2").Times(1)
	mockLogger.EXPECT().Warn("override: tail").Times(1)

	script := `cat; printf part1 >&2; sleep 0.05; printf 'part2\n' >&2; printf tail >&2`
	transform := shell.NewTransformer(mockLogger).
		CommandOverride([]string{"sh", "-c", script}, t.TempDir())

	_, err := transform(context.Background(), nil, samplePlan())
	require.NoError(t, err)
}

func TestTransformer_Failures(t *testing.T) {
	tests := []struct {
		name        string
		argv        []string
		errContains string
	}{
		{
			name:        "non-zero exit",
			argv:        []string{"sh", "-c", "cat >/dev/null; exit 3"},
			errContains: "override command failed",
		},
		{
			name:        "invalid json",
			argv:        []string{"sh", "-c", "cat >/dev/null; echo not-json"},
			errContains: "override command returned invalid plan JSON",
		},
		{
			name:        "no output",
			argv:        []string{"sh", "-c", "cat >/dev/null"},
			errContains: "override command produced no plan",
		},
		{
			name:        "missing executable",
			argv:        []string{"compplan-definitely-missing-binary"},
			errContains: "override command failed",
		},
		{
			name:        "empty argv",
			argv:        nil,
			errContains: "override command is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockLogger := mocks.NewMockLogger(ctrl)
			mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

			transform := shell.NewTransformer(mockLogger).CommandOverride(tt.argv, t.TempDir())
			_, err := transform(context.Background(), nil, samplePlan())
			require.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestTransformer_ExitCodeMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	transform := shell.NewTransformer(mocks.NewMockLogger(ctrl)).
		CommandOverride([]string{"sh", "-c", "cat >/dev/null; exit 3"}, t.TempDir())

	_, err := transform(context.Background(), nil, samplePlan())
	require.Error(t, err)

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, 3, zErr.Metadata()["exit_code"])
	assert.Equal(t, []string{"sh", "-c", "cat >/dev/null; exit 3"}, zErr.Metadata()["command"])
}

func TestTransformer_ThroughApplyOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	transform := shell.NewTransformer(mocks.NewMockLogger(ctrl)).
		CommandOverride([]string{"sh", "-c", "exit 1"}, t.TempDir())

	_, err := domain.ApplyOverride(context.Background(), transform, nil, samplePlan())
	require.ErrorIs(t, err, domain.ErrOverrideFailed)
}

func TestTransformer_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	transform := shell.NewTransformer(mocks.NewMockLogger(ctrl)).
		CommandOverride([]string{"sh", "-c", "sleep 5"}, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transform(ctx, nil, samplePlan())
	require.Error(t, err)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "COMPPLAN_ENV_TARGET", shell.EnvName("target"))
	assert.Equal(t, "COMPPLAN_ENV_API_URL", shell.EnvName("api.url"))
	assert.Equal(t, "COMPPLAN_ENV_A_B_1", shell.EnvName("a-b 1"))
}
