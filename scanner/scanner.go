// Package scanner locates node_modules directories and measures their disk
// usage with a bounded, level-synchronous concurrent walk.
package scanner

import (
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Default concurrency ceilings. Directory listings are heavier than stat
// calls, so the stat ceiling sits well above the listing one.
const (
	DefaultListWorkers = 32
	DefaultStatWorkers = 128
)

// NodeModuleInfo describes one discovered node_modules directory.
type NodeModuleInfo struct {
	Path string
	Size int64

	// SizeUnknown marks a directory whose size could not be computed. Size
	// is zero then and the total silently understates; the renderer is
	// expected to show the row as unknown.
	SizeUnknown bool

	LastModifiedAt time.Time
	ScannedAt      time.Time
}

// Progress is one progress event pushed on the Scanner's progress channel.
// During location, DirsScanned/Matches advance after each tree level.
// During sizing, SizedPath/SizedCount advance per measured directory.
type Progress struct {
	DirsScanned int
	Matches     int

	SizedPath  string
	SizedCount int

	Done bool
	Err  error
}

// Options configures a Scanner run.
type Options struct {
	FollowSymlinks bool
	// MaxDepth bounds the walk; negative means unbounded.
	MaxDepth int
	Logger   *zap.Logger
}

const (
	statusIdle int32 = iota
	statusRunning
	statusDone
)

// Scanner runs the whole discovery pipeline: locate every node_modules
// under the root, then size each match. Results and progress stream on
// channels; both are closed when the run finishes.
type Scanner struct {
	rootPath string
	opts     Options

	results  chan *NodeModuleInfo
	progress chan Progress
	doneChan chan struct{}

	status atomic.Int32

	dirCount   atomic.Int64
	matchCount atomic.Int64
	totalBytes atomic.Int64

	// Scanner start time, to report how long the whole scan took.
	startTime   time.Time
	elapsedTime atomic.Int64 // milliseconds, set once the run finishes

	// Set before doneChan closes; read after. Only a missing root lands
	// here, everything else is absorbed into the walk.
	err error

	log *zap.Logger
}

// NewScanner builds a Scanner over rootPath. The caller is expected to have
// resolved rootPath to an absolute path that exists.
func NewScanner(rootPath string, opts Options) *Scanner {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		rootPath: rootPath,
		opts:     opts,
		results:  make(chan *NodeModuleInfo, 100),
		progress: make(chan Progress, 100),
		doneChan: make(chan struct{}),
		log:      log,
	}
}

// Start kicks off the run in the background. A Scanner runs exactly once;
// further calls are no-ops. Consumers drain Results and Progress until both
// close.
func (s *Scanner) Start() {
	if !s.status.CompareAndSwap(statusIdle, statusRunning) {
		return
	}
	s.startTime = time.Now()

	go func() {
		defer close(s.doneChan)
		defer close(s.progress)
		defer close(s.results)

		s.run()

		s.elapsedTime.Store(time.Since(s.startTime).Milliseconds())
		s.status.Store(statusDone)
	}()
}

func (s *Scanner) IsRunning() bool {
	return s.status.Load() == statusRunning
}

func (s *Scanner) Results() <-chan *NodeModuleInfo {
	return s.results
}

func (s *Scanner) Progress() <-chan Progress {
	return s.progress
}

func (s *Scanner) Done() <-chan struct{} {
	return s.doneChan
}

// Err reports the fatal error of the run, if any. Valid after Done closes.
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) DirCount() int64 {
	return s.dirCount.Load()
}

func (s *Scanner) MatchCount() int64 {
	return s.matchCount.Load()
}

// TotalBytes is the running sum over all sized matches.
func (s *Scanner) TotalBytes() int64 {
	return s.totalBytes.Load()
}

func (s *Scanner) ElapsedTime() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	elapsed := s.elapsedTime.Load()
	if elapsed == 0 {
		return time.Since(s.startTime)
	}
	return time.Duration(elapsed) * time.Millisecond
}

func (s *Scanner) run() {
	loc := &Locator{
		FollowSymlinks: s.opts.FollowSymlinks,
		MaxDepth:       s.opts.MaxDepth,
		Log:            s.log,
		OnLevel: func(dirsScanned, matchesFound int) {
			s.dirCount.Store(int64(dirsScanned))
			s.matchCount.Store(int64(matchesFound))
			s.emitProgress(Progress{DirsScanned: dirsScanned, Matches: matchesFound})
		},
	}

	matches, err := loc.Find(s.rootPath)
	if err != nil {
		s.log.Error("scan failed", zap.String("root", s.rootPath), zap.Error(err))
		s.err = err
		return
	}
	s.log.Info("location pass finished",
		zap.Int64("dirsScanned", s.dirCount.Load()),
		zap.Int("matches", len(matches)))

	sizer := &Sizer{FollowSymlinks: s.opts.FollowSymlinks}
	for i, match := range matches {
		size, err := sizer.DirSize(match)
		if err != nil {
			s.log.Warn("size unknown", zap.String("path", match), zap.Error(err))
		}

		info := &NodeModuleInfo{
			Path:        match,
			Size:        size,
			SizeUnknown: err != nil,
			ScannedAt:   time.Now(),
		}
		if st, err := os.Stat(match); err == nil {
			info.LastModifiedAt = st.ModTime()
		}

		s.totalBytes.Add(size)
		s.results <- info
		s.emitProgress(Progress{
			DirsScanned: int(s.dirCount.Load()),
			Matches:     len(matches),
			SizedPath:   match,
			SizedCount:  i + 1,
		})
	}

	s.progress <- Progress{
		DirsScanned: int(s.dirCount.Load()),
		Matches:     len(matches),
		SizedCount:  len(matches),
		Done:        true,
	}
}

// emitProgress drops the event if the consumer is behind; progress is
// advisory, results are not.
func (s *Scanner) emitProgress(p Progress) {
	select {
	case s.progress <- p:
	default:
	}
}
