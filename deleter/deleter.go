// Package deleter removes directories recursively with bounded concurrency
// and per-item retry, isolating failures so one bad directory never stops
// the batch.
package deleter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"nodesweep/pool"
)

// Deletion fan-out stays far below the scan ceilings: removing huge trees
// is metadata-heavy and parallelism past a handful of workers only burns
// descriptors.
const (
	DefaultWorkers    = 4
	DefaultRetries    = 2
	DefaultRetryDelay = 200 * time.Millisecond
)

// Failure records one directory that survived all removal attempts.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Summary is the outcome of one deletion batch.
type Summary struct {
	Removed  int
	Failed   int
	Failures []Failure
}

// Err folds all failures into a single error, or nil if everything was
// removed.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, f := range s.Failures {
		merr = multierror.Append(merr, fmt.Errorf("remove %s: %s", f.Path, f.Error))
	}
	return merr.ErrorOrNil()
}

// Deleter removes directory trees. The zero value is not usable; call New.
type Deleter struct {
	// Workers caps how many removals run at once.
	Workers int

	// Retries is the number of extra attempts after a failed removal,
	// each preceded by a RetryDelay sleep.
	Retries    int
	RetryDelay time.Duration

	// OnComplete, when set, fires once per settled path with the running
	// completed count. Called from worker goroutines.
	OnComplete func(path string, completed int, err error)

	Log *zap.Logger

	removeAll func(string) error
	completed atomic.Int64
}

// New returns a Deleter with the package defaults, deleting through
// os.RemoveAll.
func New() *Deleter {
	return &Deleter{
		Workers:    DefaultWorkers,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
		removeAll:  os.RemoveAll,
	}
}

// RemoveAll deletes every path in the batch and reports the outcome. It
// returns only after every path has settled; a failing path is recorded
// and the rest proceed.
func (d *Deleter) RemoveAll(paths []string) Summary {
	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	units := make([]func() (struct{}, error), len(paths))
	for i, path := range paths {
		path := path
		units[i] = func() (struct{}, error) {
			err := d.removeOne(path, log)
			completed := int(d.completed.Add(1))
			if d.OnComplete != nil {
				d.OnComplete(path, completed, err)
			}
			return struct{}{}, err
		}
	}

	var sum Summary
	for i, res := range pool.Map(workers, units) {
		if res.Err != nil {
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{Path: paths[i], Error: res.Err.Error()})
			continue
		}
		sum.Removed++
	}

	log.Info("deletion batch finished",
		zap.Int("removed", sum.Removed),
		zap.Int("failed", sum.Failed))
	return sum
}

func (d *Deleter) removeOne(path string, log *zap.Logger) error {
	retries := d.Retries
	if retries < 0 {
		retries = 0
	}
	delay := d.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
		}
		err = d.removeAll(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			// Already gone counts as removed; someone beat us to it.
			return nil
		}
		log.Warn("removal attempt failed",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return err
}
