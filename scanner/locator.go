package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"nodesweep/pool"
)

// TargetDirName is the directory name the locator hunts for.
const TargetDirName = "node_modules"

// Directory names that are never traversed and never reported.
var ignoredDirNames = map[string]struct{}{
	".git":   {},
	".cache": {},
}

// Locator finds node_modules directories with a level-synchronous
// breadth-first walk: every directory of one tree level is listed
// concurrently, then the next level is assembled from what those listings
// discovered. Matched directories are never descended into.
type Locator struct {
	// FollowSymlinks enables traversal through symlinked directories, with
	// realpath-based cycle detection.
	FollowSymlinks bool

	// MaxDepth bounds the walk; negative means unbounded. Depth 0 is the
	// root itself, so MaxDepth 0 scans only the root's direct contents.
	MaxDepth int

	// ListWorkers caps concurrent directory listings per level.
	ListWorkers int

	// OnLevel, when set, is called after each completed level with
	// cumulative totals of directories scanned and matches found.
	OnLevel func(dirsScanned, matchesFound int)

	Log *zap.Logger
}

// frame is one directory pending traversal.
type frame struct {
	path  string
	depth int
}

// visitOutcome is what listing one directory contributes to the walk.
type visitOutcome struct {
	matches []string
	next    []frame
}

// Find returns every node_modules directory under root, in discovery order
// (shallower levels first). Only a missing root is fatal; directories that
// cannot be listed are skipped and the walk continues elsewhere.
func (l *Locator) Find(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}

	// A root named node_modules is itself the match and is not descended
	// into, same as any other matched directory.
	if filepath.Base(root) == TargetDirName {
		if l.OnLevel != nil {
			l.OnLevel(0, 1)
		}
		return []string{root}, nil
	}

	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	workers := l.ListWorkers
	if workers <= 0 {
		workers = DefaultListWorkers
	}

	var (
		matches     []string
		dirsScanned int

		// Realpaths already traversed, the guard against symlink loops.
		// Written by concurrent per-directory units.
		seen   = make(map[string]struct{})
		seenMu sync.Mutex
	)

	frontier := []frame{{path: root, depth: 0}}
	for len(frontier) > 0 {
		units := make([]func() (visitOutcome, error), len(frontier))
		for i, fr := range frontier {
			fr := fr
			units[i] = func() (visitOutcome, error) {
				return l.visit(fr, seen, &seenMu)
			}
		}

		var next []frame
		for i, res := range pool.Map(workers, units) {
			if res.Err != nil {
				log.Debug("directory skipped",
					zap.String("path", frontier[i].path),
					zap.Error(res.Err))
				continue
			}
			matches = append(matches, res.Value.matches...)
			next = append(next, res.Value.next...)
		}

		dirsScanned += len(frontier)
		if l.OnLevel != nil {
			l.OnLevel(dirsScanned, len(matches))
		}
		frontier = next
	}

	return matches, nil
}

func (l *Locator) visit(fr frame, seen map[string]struct{}, seenMu *sync.Mutex) (visitOutcome, error) {
	if l.MaxDepth >= 0 && fr.depth > l.MaxDepth {
		return visitOutcome{}, nil
	}

	if l.FollowSymlinks {
		realPath, err := filepath.EvalSymlinks(fr.path)
		if err != nil {
			return visitOutcome{}, err
		}
		seenMu.Lock()
		_, cycle := seen[realPath]
		if !cycle {
			seen[realPath] = struct{}{}
		}
		seenMu.Unlock()
		if cycle {
			return visitOutcome{}, nil
		}
	}

	entries, err := os.ReadDir(fr.path)
	if err != nil {
		// Permission denied, deleted underneath us, not a directory after
		// all. The subtree is treated as empty.
		return visitOutcome{}, err
	}

	var out visitOutcome
	for _, entry := range entries {
		isLink := entry.Type()&fs.ModeSymlink != 0
		if !entry.IsDir() && !isLink {
			continue
		}
		if isLink && !l.FollowSymlinks {
			continue
		}

		full := filepath.Join(fr.path, entry.Name())
		if isLink {
			info, err := os.Stat(full)
			if err != nil || !info.IsDir() {
				// Broken link or link to a file. Not ours to report.
				continue
			}
		}

		switch {
		case entry.Name() == TargetDirName:
			out.matches = append(out.matches, full)
		case isIgnoredName(entry.Name()):
		default:
			out.next = append(out.next, frame{path: full, depth: fr.depth + 1})
		}
	}

	return out, nil
}

func isIgnoredName(name string) bool {
	_, ok := ignoredDirNames[name]
	return ok
}
