// Package walker enumerates the qualifying source files of an instance.
package walker

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/scan-io-git/panelscan/internal/panel"
)

// Lister lists one directory level of an instance.
type Lister interface {
	ListDirectory(ctx context.Context, identifier, directory string) ([]panel.Entry, error)
}

// Options controls which files are emitted and which directories are pruned.
type Options struct {
	Extensions []string // allowed extensions including the dot, matched case-sensitively
	Excluded   []string // directory names that are never descended
}

// Walker performs a depth-first pre-order traversal of an instance's file tree.
type Walker struct {
	lister     Lister
	extensions map[string]struct{}
	excluded   map[string]struct{}
}

// New creates a Walker.
func New(lister Lister, opts Options) *Walker {
	w := &Walker{
		lister:     lister,
		extensions: make(map[string]struct{}, len(opts.Extensions)),
		excluded:   make(map[string]struct{}, len(opts.Excluded)),
	}
	for _, ext := range opts.Extensions {
		w.extensions[ext] = struct{}{}
	}
	for _, name := range opts.Excluded {
		w.excluded[name] = struct{}{}
	}
	return w
}

// frame is a directory whose entries are being consumed.
type frame struct {
	dir     string
	entries []panel.Entry
	next    int
}

// Walk lists root and every non-excluded directory below it, one listing call per
// directory, and returns the paths of files with an allowed extension in pre-order.
// A listing failure anywhere aborts the walk.
func (w *Walker) Walk(ctx context.Context, identifier, root string) ([]string, error) {
	var files []string

	rootFrame, err := w.open(ctx, identifier, root)
	if err != nil {
		return nil, err
	}
	stack := []*frame{rootFrame}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := top.entries[top.next]
		top.next++

		full := path.Join(top.dir, entry.Name)
		switch {
		case entry.IsFile:
			if w.allowed(entry.Name) {
				files = append(files, full)
			}
		case entry.IsSymlink:
			// not descended, a link may point back up the tree
		case w.isExcluded(entry.Name):
			// pruned
		default:
			child, err := w.open(ctx, identifier, full)
			if err != nil {
				return nil, err
			}
			stack = append(stack, child)
		}
	}
	return files, nil
}

func (w *Walker) open(ctx context.Context, identifier, dir string) (*frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := w.lister.ListDirectory(ctx, identifier, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}
	return &frame{dir: dir, entries: entries}, nil
}

func (w *Walker) isExcluded(name string) bool {
	_, ok := w.excluded[name]
	return ok
}

func (w *Walker) allowed(name string) bool {
	_, ok := w.extensions[Ext(name)]
	return ok
}

// Ext returns the extension of name from its last dot, or "" when there is none.
// A leading dot alone does not start an extension, so ".env" has none.
func Ext(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}
