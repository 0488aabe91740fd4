package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	// ErrRootNotFound indicates the scan root does not exist.
	ErrRootNotFound = errors.New("path does not exist")

	// ErrNotDirectory indicates the scan root is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")
)

// ResolveRoot validates the scan root and returns its absolute path.
// Validation happens before any traversal so a bad root fails fast.
func ResolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%q: %w", path, ErrRootNotFound)
		}

		return "", fmt.Errorf("stat %q: %w", path, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%q: %w", path, ErrNotDirectory)
	}

	return abs, nil
}

// Collector walks a directory tree and produces the work items for a count.
type Collector struct {
	classifier *Classifier
	log        *slog.Logger
}

// NewCollector creates a Collector using the given classifier. A nil logger
// falls back to slog.Default.
func NewCollector(classifier *Classifier, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}

	return &Collector{classifier: classifier, log: log}
}

// Collect walks the tree rooted at root and returns every file accepted by
// the classifier. The root is validated first; a missing or non-directory
// root is the only fatal condition. Denylisted directories are pruned, not
// descended into. Unreadable entries are skipped silently; only a cancelled
// context aborts the walk. Traversal order carries no meaning.
func (c *Collector) Collect(ctx context.Context, root string) ([]WorkItem, error) {
	root, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	var items []WorkItem

	scanned := 0

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Permission failures and vanished entries are exclusions,
			// not fatal conditions.
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		if entry.IsDir() {
			if path != root && c.classifier.SkipDir(entry.Name()) {
				return fs.SkipDir
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		scanned++

		info, err := entry.Info()
		if err != nil {
			return nil
		}

		ext, ok := c.classifier.Classify(path, entry.Name(), info.Size())
		if !ok {
			return nil
		}

		items = append(items, WorkItem{Path: path, Ext: ext})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}

	c.log.Debug("scan: collected files", "root", root, "scanned", scanned, "matched", len(items))

	return items, nil
}
