// Package shell runs user-declared override commands.
package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports"
	"go.trai.ch/zerr"
)

// EnvPrefix prefixes every override environment variable handed to the command.
const EnvPrefix = "COMPPLAN_ENV_"

var _ ports.OverrideFactory = (*Transformer)(nil)

// Transformer implements ports.OverrideFactory with os/exec.
type Transformer struct {
	logger ports.Logger
}

// NewTransformer creates a new Transformer. Command stderr is forwarded to logger.
func NewTransformer(logger ports.Logger) *Transformer {
	return &Transformer{
		logger: logger,
	}
}

// CommandOverride returns a transform piping the plan through argv, run in dir.
// The command reads the plan as JSON on stdin and writes the final plan as JSON
// to stdout. The override environment is exported as COMPPLAN_ENV_<KEY>.
func (t *Transformer) CommandOverride(argv []string, dir string) domain.TransformFn {
	argv = slices.Clone(argv)
	return func(ctx context.Context, env map[string]string, plan *domain.Plan) (*domain.Plan, error) {
		return t.run(ctx, argv, dir, env, plan)
	}
}

func (t *Transformer) run(
	ctx context.Context,
	argv []string,
	dir string,
	env map[string]string,
	plan *domain.Plan,
) (*domain.Plan, error) {
	if len(argv) == 0 {
		return nil, zerr.New("override command is empty")
	}

	input, err := json.Marshal(plan)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode plan for override command")
	}

	name := argv[0]
	cmdEnv := resolveEnvironment(os.Environ(), env)

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // user provided command
	cmd.Args[0] = name
	cmd.Dir = dir
	cmd.Env = cmdEnv
	cmd.Stdin = bytes.NewReader(input)

	var stdout bytes.Buffer
	stderr := &lineWriter{logger: t.logger}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()
	stderr.Flush()
	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, zerr.With(
			zerr.With(zerr.Wrap(runErr, "override command failed"), "command", argv),
			"exit_code", exitCode,
		)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, zerr.With(zerr.New("override command produced no plan"), "command", argv)
	}

	var result domain.Plan
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "override command returned invalid plan JSON"), "command", argv)
	}
	return &result, nil
}

// lineWriter forwards complete lines to the logger as warnings.
type lineWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits a trailing partial line.
func (w *lineWriter) Flush() {
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

func (w *lineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" || w.logger == nil {
		return
	}
	w.logger.Warn("override: " + line)
}

// resolveEnvironment layers the override environment over the system environment.
// The result is sorted for reproducible command invocations.
func resolveEnvironment(sysEnv []string, env map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(env))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range env {
		envMap[EnvName(k)] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// EnvName returns the variable name an override environment key is exported under.
// Letters are upper-cased and every other non-alphanumeric rune becomes '_'.
func EnvName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToUpper(r)
		default:
			return '_'
		}
	}, key)
	return EnvPrefix + name
}

// lookPath searches for an executable in the PATH of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
