// Package artifact computes the files a source file produces in the output
// directory and the URL each output file is served at.
//
// Every function in this package is pure: it looks only at the paths it is
// given and never touches the filesystem.
package artifact

import (
	"path"
	"path/filepath"
	"strings"
)

// TreeKind selects the output rule applied to a source file.
type TreeKind int

const (
	// PagesCompiled is the pages tree seen by the compiler: .md and .mdx
	// files become HTML documents.
	PagesCompiled TreeKind = iota
	// PagesStaticCopy is the pages tree seen by the static copier: everything
	// except code files is copied next to the compiled pages.
	PagesStaticCopy
	// PublicStatic is the public tree, copied verbatim.
	PublicStatic
	// Generated holds files that build steps write straight into the
	// output directory. Their source path is the dist path.
	Generated
)

// Dist paths of the assets the build writes itself.
const (
	StylesheetPath = "_pagesmith/styles.css"
	ScriptPath     = "_pagesmith/client.js"
)

func (k TreeKind) String() string {
	switch k {
	case PagesCompiled:
		return "pages-compiled"
	case PagesStaticCopy:
		return "pages-static"
	case PublicStatic:
		return "public"
	case Generated:
		return "generated"
	default:
		return "unknown"
	}
}

// Kind describes how an artifact is produced.
type Kind int

const (
	CompiledHTML Kind = iota
	StaticCopy
	GeneratedAsset
)

func (k Kind) String() string {
	switch k {
	case CompiledHTML:
		return "compiled-html"
	case GeneratedAsset:
		return "generated"
	default:
		return "static-copy"
	}
}

// SourceFile is a file in one of the source trees. RelPath is relative to the
// tree root and always uses forward slashes.
type SourceFile struct {
	RelPath string
	Tree    TreeKind
}

// Artifact is one file that will exist in the output directory.
type Artifact struct {
	DistPath string
	Source   SourceFile
	Kind     Kind
}

var codeExtensions = map[string]bool{
	"js":  true,
	"jsx": true,
	"ts":  true,
	"tsx": true,
	"mjs": true,
	"cjs": true,
}

// Normalize converts a host relative path into the slash separated form used
// for source and dist paths.
func Normalize(rel string) string {
	return path.Clean(filepath.ToSlash(rel))
}

// Ext returns the text after the last "." of the final path segment, or ""
// when the segment has no dot.
func Ext(rel string) string {
	base := path.Base(rel)
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return base[i+1:]
}

// StripExt removes the final extension (including its dot) from rel. Only
// the last extension is removed, so "v1.2.3.md" becomes "v1.2.3".
func StripExt(rel string) string {
	base := path.Base(rel)
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return rel
	}
	return rel[:len(rel)-(len(base)-i)]
}

// IsPage reports whether rel is compiled into an HTML document.
func IsPage(rel string) bool {
	ext := Ext(rel)
	return ext == "md" || ext == "mdx"
}

// IsCode reports whether rel has a script extension, compared case-insensitively.
func IsCode(rel string) bool {
	return codeExtensions[strings.ToLower(Ext(rel))]
}

// EntryName is the page identifier derived from a page source path.
func EntryName(rel string) string {
	return StripExt(rel)
}

// CompiledPath returns the dist path a page compiles to. An entry whose last
// segment is "index" maps to "<entry>.html", anything else to
// "<entry>/index.html".
func CompiledPath(rel string) string {
	entry := EntryName(rel)
	if path.Base(entry) == "index" {
		return entry + ".html"
	}
	return entry + "/index.html"
}

// Resolve returns the artifacts src produces: zero, one or (across the two
// pages tree kinds) two per physical file.
func Resolve(src SourceFile) []Artifact {
	rel := src.RelPath
	switch src.Tree {
	case PagesCompiled:
		if !IsPage(rel) {
			return nil
		}
		return []Artifact{{DistPath: CompiledPath(rel), Source: src, Kind: CompiledHTML}}
	case PagesStaticCopy:
		if IsCode(rel) {
			return nil
		}
		dist := rel
		if Ext(rel) == "mdx" {
			dist = StripExt(rel) + ".md"
		}
		return []Artifact{{DistPath: dist, Source: src, Kind: StaticCopy}}
	case PublicStatic:
		return []Artifact{{DistPath: rel, Source: src, Kind: StaticCopy}}
	case Generated:
		return []Artifact{{DistPath: rel, Source: src, Kind: GeneratedAsset}}
	default:
		return nil
	}
}

// URLForDistPath maps a dist path to the URL path it is served at.
//
//	index.html        -> /
//	about/index.html  -> /about
//	foo.html          -> /foo
//	img/logo.png      -> /img/logo.png
//
// Anything serving the output directory must route through this function.
func URLForDistPath(dist string) string {
	switch {
	case dist == "index.html":
		return "/"
	case strings.HasSuffix(dist, "/index.html"):
		return "/" + strings.TrimSuffix(dist, "/index.html")
	case strings.HasSuffix(dist, ".html"):
		return "/" + strings.TrimSuffix(dist, ".html")
	default:
		return "/" + dist
	}
}
