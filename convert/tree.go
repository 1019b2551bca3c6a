package convert

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultExtensions are the source file extensions picked up by ConvertTree.
var DefaultExtensions = []string{".ftl", ".l20n"}

// TreeOptions controls a directory conversion.
type TreeOptions struct {
	Options
	// Extensions selects source files; nil means DefaultExtensions.
	Extensions []string
	// Jobs limits concurrent conversions; 0 means runtime.NumCPU().
	Jobs int
	// OnFile, if set, is called after each converted file. Calls are
	// serialized.
	OnFile func(rel string, res Result)
}

// TreeResult summarizes a directory conversion.
type TreeResult struct {
	Files   int
	Units   int
	Carried int
	// Warnings is the total number of skipped source lines.
	Warnings int
}

// ConvertTree converts every source file below inDir into outDir, keeping
// the relative layout and replacing the extension with .po (.pot when
// opts.POT is set). When tmplDir is non-empty, tmplDir/<rel>.po is used as
// the template for <rel> if it exists. Each file is an independent
// conversion; the first failure cancels the remaining ones.
func ConvertTree(ctx context.Context, inDir, outDir, tmplDir string, opts TreeOptions) (TreeResult, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	sources, err := findSources(inDir, exts)
	if err != nil {
		return TreeResult{}, err
	}

	outExt := ".po"
	if opts.POT {
		outExt = ".pot"
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var (
		mu    sync.Mutex
		total TreeResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, rel := range sources {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			base := strings.TrimSuffix(rel, filepath.Ext(rel))
			outPath := filepath.Join(outDir, base+outExt)

			tmplPath := ""
			if tmplDir != "" && !opts.POT {
				candidate := filepath.Join(tmplDir, base+".po")
				if fileExists(candidate) {
					tmplPath = candidate
				}
			}

			res, err := ConvertFile(filepath.Join(inDir, rel), outPath, tmplPath, opts.Options)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			total.Files++
			total.Units += res.Units
			total.Carried += res.Carried
			total.Warnings += len(res.Warnings)
			if opts.OnFile != nil {
				opts.OnFile(rel, res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// findSources returns the paths of matching files below dir, relative to
// dir, in lexical order.
func findSources(dir string, exts []string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasExt(path, exts) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(found)
	return found, nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
