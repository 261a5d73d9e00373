package scenario

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrPathNotFound    = errors.New("path not found")
	ErrNotDirectory    = errors.New("not a directory")
)

// Node is either a *Dir or a File. The set of implementations is closed.
type Node interface {
	isNode()
}

type File struct {
	Size int64
}

func (File) isNode() {}

type Entry struct {
	Name string
	Node Node
}

// Dir keeps its children in the order they were declared.
type Dir struct {
	entries []Entry
	index   map[string]int
}

func (*Dir) isNode() {}

// NewDir builds a directory from entries. Names must be unique and non-empty.
func NewDir(entries ...Entry) (*Dir, error) {
	d := &Dir{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if err := d.add(e); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dir) add(e Entry) error {
	if e.Name == "" || strings.Contains(e.Name, "/") {
		return fmt.Errorf("%w: bad entry name %q", ErrInvalidScenario, e.Name)
	}
	if _, exists := d.index[e.Name]; exists {
		return fmt.Errorf("%w: duplicate entry %q", ErrInvalidScenario, e.Name)
	}
	switch n := e.Node.(type) {
	case File:
		if n.Size < 0 {
			return fmt.Errorf("%w: negative size for %q", ErrInvalidScenario, e.Name)
		}
	case *Dir:
		if n == nil {
			return fmt.Errorf("%w: nil directory %q", ErrInvalidScenario, e.Name)
		}
	default:
		return fmt.Errorf("%w: unsupported node for %q", ErrInvalidScenario, e.Name)
	}
	d.index[e.Name] = len(d.entries)
	d.entries = append(d.entries, e)
	return nil
}

func (d *Dir) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Dir) Len() int { return len(d.entries) }

func (d *Dir) Child(name string) (Node, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.entries[i].Node, true
}

// Lookup resolves p relative to d.
func (d *Dir) Lookup(p Path) (Node, error) {
	var current Node = d
	for i, seg := range p {
		dir, ok := current.(*Dir)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, Path(p[:i]))
		}
		next, ok := dir.Child(seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, p)
		}
		current = next
	}
	return current, nil
}

// LookupDir is Lookup restricted to directories.
func (d *Dir) LookupDir(p Path) (*Dir, error) {
	n, err := d.Lookup(p)
	if err != nil {
		return nil, err
	}
	dir, ok := n.(*Dir)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, p)
	}
	return dir, nil
}

// WalkFunc is called for every entry below the walked directory. parent is the
// path of the directory holding the entry.
type WalkFunc func(parent Path, e Entry) error

// Walk visits entries depth-first in declaration order. Directories are
// reported before their contents.
func (d *Dir) Walk(fn WalkFunc) error {
	return d.walk(Root(), fn)
}

func (d *Dir) walk(parent Path, fn WalkFunc) error {
	for _, e := range d.entries {
		if err := fn(parent, e); err != nil {
			return err
		}
		if sub, ok := e.Node.(*Dir); ok {
			if err := sub.walk(parent.Child(e.Name), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Path is a sequence of directory segments. The empty path is the root.
type Path []string

func Root() Path { return Path{} }

// ParsePath accepts "a/b", "/a/b/", "./a" and treats "", "/" and "." as the root.
func ParsePath(s string) Path {
	p := Path{}
	for _, seg := range strings.Split(s, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." {
			continue
		}
		p = append(p, seg)
	}
	return p
}

func (p Path) IsRoot() bool { return len(p) == 0 }

// Child returns a new path; p is never modified.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

func (p Path) Key() string { return strings.Join(p, "/") }

func (p Path) String() string {
	if p.IsRoot() {
		return "."
	}
	return p.Key()
}

func (p Path) Equal(o Path) bool { return p.Key() == o.Key() }
