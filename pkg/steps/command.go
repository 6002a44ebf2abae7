package steps

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/systemstart/pagesmith/pkg/api"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

// commandStep runs an external tool configured in the site file and
// publishes what it printed.
type commandStep struct {
	name   string
	desc   string
	config func(site *api.Site) *api.Command
	// target, when set, names the file stdout is written to.
	target func(st *pipeline.State) string
	// publish stores the result in the step's own Outputs field.
	publish func(st *pipeline.State, out *pipeline.CommandOutput)
}

func (s *commandStep) Name() string        { return s.name }
func (s *commandStep) Description() string { return s.desc }

func (s *commandStep) ShouldRun(_ context.Context, st *pipeline.State) bool {
	return s.config(&st.Options).Configured()
}

func (s *commandStep) Execute(ctx context.Context, st *pipeline.State) error {
	cmd := s.config(&st.Options)

	start := time.Now()
	stdout, err := runCommand(ctx, cmd, nil, siteEnv(st))
	if err != nil {
		return err
	}

	out := &pipeline.CommandOutput{Stdout: stdout, Duration: time.Since(start)}
	if s.target != nil && len(stdout) > 0 {
		path := s.target(st)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("creating parent directories: %w", err)
		}
		if err := os.WriteFile(path, stdout, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		out.Path = path
	}

	if s.publish != nil {
		s.publish(st, out)
	}
	slog.Info("command finished", "step", s.name, "bytes", len(stdout), "output", out.Path)
	return nil
}

// runCommand executes c with extra arguments appended and extra environment
// entries added to the current environment, returning its stdout. Build
// variables left in c by the config loader are expanded from extraEnv.
func runCommand(ctx context.Context, c *api.Command, extraArgs, extraEnv []string) ([]byte, error) {
	bin := c.Command[0]
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%s binary not found in PATH: %w", bin, err)
	}

	vars := make(map[string]string, len(extraEnv))
	for _, kv := range extraEnv {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	expand := func(s string) string {
		return os.Expand(s, func(name string) string {
			if v, ok := vars[name]; ok {
				return v
			}
			return "${" + name + "}"
		})
	}

	args := make([]string, 0, len(c.Command)-1+len(extraArgs))
	for _, arg := range c.Command[1:] {
		args = append(args, expand(arg))
	}
	args = append(args, extraArgs...)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = c.Dir
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, k+"="+expand(v))
	}
	cmd.Env = append(cmd.Env, extraEnv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "command", bin, "args", args, "dir", c.Dir)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w\nstderr: %s", bin, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// siteEnv exposes the build layout to external tools.
func siteEnv(st *pipeline.State) []string {
	return []string{
		"PAGESMITH_PAGES_DIR=" + st.Options.PagesDir,
		"PAGESMITH_PUBLIC_DIR=" + st.Options.PublicDir,
		"PAGESMITH_OUT_DIR=" + st.Options.OutDir,
		"PAGESMITH_CACHE_DIR=" + CacheDir(&st.Options, st.Session),
		"PAGESMITH_SESSION=" + st.Session.ID,
	}
}
