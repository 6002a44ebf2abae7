package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/systemstart/pagesmith/pkg/artifact"
	"github.com/systemstart/pagesmith/pkg/conflicts"
	"github.com/systemstart/pagesmith/pkg/pipeline"
)

type copyStaticStep struct{}

func (copyStaticStep) Name() string { return StepCopyStatic }

func (copyStaticStep) Description() string {
	return "copy non-code page files and the public tree into the output directory"
}

func (copyStaticStep) Execute(ctx context.Context, st *pipeline.State) error {
	trees := conflicts.TreesFor(st)
	arts, err := trees.Artifacts()
	if err != nil {
		return fmt.Errorf("resolving static files: %w", err)
	}

	summary := &pipeline.CopySummary{}
	for _, a := range arts {
		if a.Kind != artifact.StaticCopy {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		src := filepath.Join(trees.Root(a.Source.Tree), filepath.FromSlash(a.Source.RelPath))
		dst := filepath.Join(st.Options.OutDir, filepath.FromSlash(a.DistPath))
		n, err := copyFile(src, dst)
		if err != nil {
			return err
		}
		summary.Files++
		summary.Bytes += n
	}

	st.Outputs.Copied = summary
	slog.Info("copied static files", "files", summary.Files, "size", humanize.Bytes(uint64(summary.Bytes)))
	return nil
}

func copyFile(src, dst string) (int64, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", src, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return 0, fmt.Errorf("creating directory %s: %w", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("writing %s: %w", dst, err)
	}
	return int64(len(data)), nil
}
