package steps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyStaticStep(t *testing.T) {
	site := newTestSite(t)
	writeTestFile(t, site.PagesDir, "notes.mdx", "# notes")
	writeTestFile(t, site.PagesDir, "a.md", "a")
	writeTestFile(t, site.PagesDir, "img/x.png", "png")
	writeTestFile(t, site.PagesDir, "app.tsx", "export {}")
	writeTestFile(t, site.PagesDir, "lib/util.JS", "export {}")
	writeTestFile(t, site.PublicDir, "robots.txt", "User-agent: *")
	writeTestFile(t, site.PublicDir, "app.js", "console.log(1)")
	st := newTestState(t, site)

	if err := (copyStaticStep{}).Execute(context.Background(), st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"notes.md":   "# notes",
		"a.md":       "a",
		"img/x.png":  "png",
		"robots.txt": "User-agent: *",
		"app.js":     "console.log(1)",
	}
	var size int64
	for rel, content := range want {
		if got := readTestFile(t, site.OutDir, rel); got != content {
			t.Errorf("%s: expected %q, got %q", rel, content, got)
		}
		size += int64(len(content))
	}

	for _, rel := range []string{"app.tsx", "lib/util.JS", "notes.mdx"} {
		if _, err := os.Stat(filepath.Join(site.OutDir, filepath.FromSlash(rel))); !os.IsNotExist(err) {
			t.Errorf("expected %s not to be copied", rel)
		}
	}

	if st.Outputs.Copied == nil {
		t.Fatal("expected copy summary")
	}
	if st.Outputs.Copied.Files != len(want) || st.Outputs.Copied.Bytes != size {
		t.Errorf("expected %d files and %d bytes, got %+v", len(want), size, st.Outputs.Copied)
	}
}

func TestCopyFile_KeepsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(src, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "out", "nested", "run.sh")

	n, err := copyFile(src, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 10 {
		t.Errorf("expected 10 bytes, got %d", n)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("expected mode 0700, got %o", info.Mode().Perm())
	}
}
