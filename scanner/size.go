package scanner

import (
	"io/fs"
	"os"
	"path/filepath"

	"nodesweep/pool"
)

// Sizer computes the total byte size of everything under a directory. It
// walks level by level like the Locator but measures instead of matching:
// nested node_modules, .git and friends all count here. Sizes are raw byte
// counts from file metadata, no block rounding, no hardlink dedup.
type Sizer struct {
	// FollowSymlinks makes symlinked files count and symlinked directories
	// get descended into. Off by default, matching the Locator.
	FollowSymlinks bool

	// ListWorkers caps concurrent directory listings per round.
	ListWorkers int

	// StatWorkers caps concurrent stat calls. Stats are cheaper and more
	// numerous than listings, so this ceiling sits higher.
	StatWorkers int
}

// statTarget is one entry whose size (or, for symlinks, nature) still needs
// a stat call.
type statTarget struct {
	path    string
	symlink bool
}

// listOutcome is what listing one directory feeds into the round.
type listOutcome struct {
	stats   []statTarget
	subdirs []string
}

// statOutcome is either a byte contribution or a directory discovered
// behind a symlink.
type statOutcome struct {
	size int64
	dir  string
}

// DirSize returns the total byte size of all regular files transitively
// under dir. An unreadable dir itself is an error; failures anywhere deeper
// just degrade the measurement, contributing zero.
func (s *Sizer) DirSize(dir string) (int64, error) {
	listWorkers := s.ListWorkers
	if listWorkers <= 0 {
		listWorkers = DefaultListWorkers
	}
	statWorkers := s.StatWorkers
	if statWorkers <= 0 {
		statWorkers = DefaultStatWorkers
	}

	var total int64
	frontier := []string{dir}
	for round := 0; len(frontier) > 0; round++ {
		listUnits := make([]func() (listOutcome, error), len(frontier))
		for i, d := range frontier {
			d := d
			listUnits[i] = func() (listOutcome, error) {
				return s.list(d)
			}
		}

		var stats []statTarget
		var next []string
		for _, res := range pool.Map(listWorkers, listUnits) {
			if res.Err != nil {
				if round == 0 {
					// The measured directory itself is unreadable.
					return 0, res.Err
				}
				continue
			}
			stats = append(stats, res.Value.stats...)
			next = append(next, res.Value.subdirs...)
		}

		statUnits := make([]func() (statOutcome, error), len(stats))
		for i, target := range stats {
			target := target
			statUnits[i] = func() (statOutcome, error) {
				return s.stat(target)
			}
		}
		for _, res := range pool.Map(statWorkers, statUnits) {
			if res.Err != nil {
				continue
			}
			if res.Value.dir != "" {
				next = append(next, res.Value.dir)
				continue
			}
			total += res.Value.size
		}

		frontier = next
	}

	return total, nil
}

func (s *Sizer) list(dir string) (listOutcome, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return listOutcome{}, err
	}

	var out listOutcome
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			// Type is already known from the listing, no stat needed.
			out.subdirs = append(out.subdirs, full)
		case entry.Type()&fs.ModeSymlink != 0:
			if s.FollowSymlinks {
				out.stats = append(out.stats, statTarget{path: full, symlink: true})
			}
		case entry.Type().IsRegular():
			out.stats = append(out.stats, statTarget{path: full})
		}
	}
	return out, nil
}

func (s *Sizer) stat(target statTarget) (statOutcome, error) {
	if target.symlink {
		// os.Stat follows the link; a dir target joins the next frontier,
		// a file target contributes its size.
		info, err := os.Stat(target.path)
		if err != nil {
			return statOutcome{}, err
		}
		if info.IsDir() {
			return statOutcome{dir: target.path}, nil
		}
		return statOutcome{size: info.Size()}, nil
	}

	info, err := os.Lstat(target.path)
	if err != nil {
		return statOutcome{}, err
	}
	return statOutcome{size: info.Size()}, nil
}
