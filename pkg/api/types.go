package api

import "path/filepath"

const (
	DefaultPagesDir  = "pages"
	DefaultPublicDir = "public"
	DefaultOutDir    = "dist"

	// StateDirName is the directory below the site directory that holds
	// build locks, session caches and preview builds. Source walks skip it.
	StateDirName = ".pagesmith"
)

// Site is the pagesmith.yaml (or pagesmith.toml) configuration format.
type Site struct {
	PagesDir  string   `yaml:"pagesDir" toml:"pagesDir"`
	PublicDir string   `yaml:"publicDir" toml:"publicDir"`
	OutDir    string   `yaml:"outDir" toml:"outDir"`
	Ignore    []string `yaml:"ignore" toml:"ignore"`
	Layout    string   `yaml:"layout" toml:"layout"`
	Meta      Meta     `yaml:"site" toml:"site"`

	Install      *Command `yaml:"install,omitempty" toml:"install,omitempty"`
	CSS          *Command `yaml:"css,omitempty" toml:"css,omitempty"`
	BundleServer *Command `yaml:"bundleServer,omitempty" toml:"bundleServer,omitempty"`
	BundleClient *Command `yaml:"bundleClient,omitempty" toml:"bundleClient,omitempty"`
	Render       *Command `yaml:"render,omitempty" toml:"render,omitempty"`

	// Set by the loader, not from the file.
	Dir      string `yaml:"-" toml:"-"`
	FilePath string `yaml:"-" toml:"-"`
}

// StateDir returns the directory pagesmith keeps its own files in.
func (s *Site) StateDir() string {
	return filepath.Join(s.Dir, StateDirName)
}

// Meta holds values exposed to the HTML layout.
type Meta struct {
	Title   string `yaml:"title" toml:"title"`
	BaseURL string `yaml:"baseURL" toml:"baseURL"`
}

// Command describes an external tool invocation.
type Command struct {
	Command []string          `yaml:"command" toml:"command"`
	Env     map[string]string `yaml:"env" toml:"env"`
	Dir     string            `yaml:"dir" toml:"dir"`
}

// Configured reports whether c names a program to run.
func (c *Command) Configured() bool {
	return c != nil && len(c.Command) > 0
}
