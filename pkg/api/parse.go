package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigNames are probed in order when no config file is given.
var DefaultConfigNames = []string{"pagesmith.yaml", "pagesmith.yml", "pagesmith.toml"}

// FindConfig returns the first default config file present in dir, or "" if
// there is none.
func FindConfig(dir string) string {
	for _, name := range DefaultConfigNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// LoadSite reads a site config file, applies defaults, resolves directories
// relative to the file and validates the result. The format is chosen by
// file extension.
func LoadSite(filename string) (*Site, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading site config: %w", err)
	}

	var s Site
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing site config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing site config: %w", err)
		}
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	s.FilePath = absPath
	s.Dir = filepath.Dir(absPath)
	s.Resolve()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating site config %s: %w", filename, err)
	}

	return &s, nil
}

// DefaultSite returns the configuration used when no config file exists:
// conventional directory names under dir.
func DefaultSite(dir string) (*Site, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	s := &Site{Dir: absDir}
	s.Resolve()
	return s, nil
}

// Resolve fills in default directory names, makes directories absolute
// against s.Dir and expands environment variables in command definitions.
func (s *Site) Resolve() {
	s.PagesDir = s.abs(orDefault(s.PagesDir, DefaultPagesDir))
	s.PublicDir = s.abs(orDefault(s.PublicDir, DefaultPublicDir))
	s.OutDir = s.abs(orDefault(s.OutDir, DefaultOutDir))
	if s.Layout != "" {
		s.Layout = s.abs(s.Layout)
	}
	for _, c := range []*Command{s.Install, s.CSS, s.BundleServer, s.BundleClient, s.Render} {
		if c == nil {
			continue
		}
		for i, arg := range c.Command {
			c.Command[i] = expandEnv(arg)
		}
		for k, v := range c.Env {
			c.Env[k] = expandEnv(v)
		}
		if c.Dir == "" {
			c.Dir = s.Dir
		} else {
			c.Dir = s.abs(c.Dir)
		}
	}
}

func (s *Site) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.Dir, p)
}

// BuildVarPrefix marks variables that are only known while a build runs.
// They are left in place at load time and expanded by the command runner.
const BuildVarPrefix = "PAGESMITH_"

// expandEnv substitutes variables set in the environment. Build variables and
// anything unset, such as shell positional parameters, are kept as references.
func expandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if v, ok := os.LookupEnv(name); ok && !strings.HasPrefix(name, BuildVarPrefix) {
			return v
		}
		return "${" + name + "}"
	})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
