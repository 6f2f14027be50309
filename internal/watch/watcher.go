// SPDX-License-Identifier: MPL-2.0

// Package watch watches package index directories and fires a debounced
// callback when installed distributions or toolkit sources change.
//
// Each root is walked to a configurable depth. Site-packages directories are
// usually watched shallowly (a pip install adds or removes *.dist-info
// directories at the top level), workspaces deeply.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Unlimited as a Root depth walks the whole tree.
const Unlimited = -1

// ErrNoRoots is returned by New when none of the configured roots exist.
var ErrNoRoots = errors.New("watch: no directory to watch")

// defaultIgnores are always excluded, on top of Config.Ignore.
var defaultIgnores = []string{
	"**/.git/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"**/.mypy_cache/**",
	"**/.pytest_cache/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// DefaultPatterns select the files a package index reads: METADATA and
// friends, dist-info directories themselves, project files and sources.
var DefaultPatterns = []string{
	"*.dist-info",
	"**/*.dist-info/METADATA",
	"**/*.dist-info/entry_points.txt",
	"**/*.dist-info/top_level.txt",
	"**/pyproject.toml",
	"**/*.py",
}

type (
	// Root is one watched directory.
	Root struct {
		Dir string
		// MaxDepth limits how many directory levels below Dir are watched;
		// 0 watches Dir alone and Unlimited watches the whole tree.
		MaxDepth int
	}

	// Config holds the parameters for a Watcher.
	Config struct {
		Roots []Root

		// Patterns are doublestar patterns, relative to the root an event
		// falls under, selecting which paths trigger the callback. Empty
		// means DefaultPatterns.
		Patterns []string

		// Ignore adds doublestar patterns that never trigger the callback.
		Ignore []string

		// Debounce is the quiet period after the last event before the
		// callback fires. Zero or negative values use 500ms.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// callback.
		ClearScreen bool

		// OnChange receives the sorted, deduplicated absolute paths that
		// changed. Calls never overlap.
		OnChange func(ctx context.Context, changed []string) error

		Stdout io.Writer
		Logger *log.Logger
	}

	// Watcher monitors roots and fires OnChange. Run may be called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []Root
		patterns []string
		ignores  []string
		debounce time.Duration
		stdout   io.Writer
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New validates cfg and registers every existing root. Missing roots are
// logged and skipped.
func New(cfg Config) (*Watcher, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	var roots []Root
	seen := make(map[string]bool)
	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r.Dir)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", r.Dir, err)
		}
		if seen[abs] {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			logger.Warn("watch: skipping missing directory", "dir", abs)
			continue
		}
		seen[abs] = true
		roots = append(roots, Root{Dir: abs, MaxDepth: r.MaxDepth})
	}
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		patterns: slices.Clone(patterns),
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		stdout:   stdout,
		logger:   logger,
	}
	for _, r := range roots {
		if err := w.addTree(r); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn("watch: close after init failure", "err", closeErr)
			}
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the roots actually being watched.
func (w *Watcher) Roots() []Root {
	return slices.Clone(w.roots)
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when fsnotify fails irrecoverably.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			// Still busy: retry after another window so pending paths are
			// not dropped.
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			w.logger.Debug("watch: previous run still in progress")
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		clear(pending)
		mu.Unlock()
		slices.Sort(changed)

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("watch: callback failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("watch: close fsnotify", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			root, rel, ok := w.resolve(evt.Name)
			if !ok || w.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(root, evt.Name, rel)
			}
			if !w.matches(rel) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("watch: fsnotify error", "err", err)
		}
	}
}

// addTree registers r.Dir and its subdirectories down to r.MaxDepth.
func (w *Watcher) addTree(r Root) error {
	err := filepath.WalkDir(r.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Debug("watch: skipping inaccessible path", "path", path, "err", walkErr)
			return nil //nolint:nilerr // inaccessible subtrees are not watched
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(r.Dir, path)
		if rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		if r.MaxDepth != Unlimited && depth(rel) >= r.MaxDepth {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", r.Dir, err)
	}
	return nil
}

// maybeAddDir watches a directory created after startup when it lies within
// its root's depth limit.
func (w *Watcher) maybeAddDir(r Root, path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if w.isIgnored(rel + "/") {
		return
	}
	if r.MaxDepth != Unlimited && depth(rel) > r.MaxDepth {
		return
	}
	if err := w.addTree(Root{Dir: path, MaxDepth: remaining(r.MaxDepth, depth(rel))}); err != nil {
		w.logger.Warn("watch: add new directory", "dir", path, "err", err)
	}
}

// resolve maps an event path to its root and root-relative slash path.
// The most specific root wins for nested roots.
func (w *Watcher) resolve(path string) (Root, string, bool) {
	var (
		best    Root
		bestRel string
		found   bool
	)
	for _, r := range w.roots {
		rel, err := filepath.Rel(r.Dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if !found || len(r.Dir) > len(best.Dir) {
			best, bestRel, found = r, filepath.ToSlash(rel), true
		}
	}
	return best, bestRel, found
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return matchAny(w.patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// depth is the number of path elements in a root-relative path; "." is 0.
func depth(rel string) int {
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func remaining(maxDepth, used int) int {
	if maxDepth == Unlimited {
		return Unlimited
	}
	return max(maxDepth-used, 0)
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
