package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kardolus/agentic/scenario"
	"github.com/kardolus/agentic/trace"
)

const listDirectorySchema = `{
  "type": "object",
  "properties": {
    "path": {"type": "string", "description": "Path to list (relative to root)"},
    "show_hidden": {"type": "boolean", "description": "Show hidden files"}
  },
  "required": ["path"]
}`

// ListDirectory serves listings from an in-memory scenario tree.
type ListDirectory struct {
	root *scenario.Dir
}

var _ Tool = (*ListDirectory)(nil)

func NewListDirectory(root *scenario.Dir) *ListDirectory {
	return &ListDirectory{root: root}
}

func (l *ListDirectory) Name() string { return trace.ToolListDirectory }

func (l *ListDirectory) Description() string {
	return "List the contents of a directory. Files are reported with their size in bytes."
}

func (l *ListDirectory) Schema() string { return listDirectorySchema }

func (l *ListDirectory) Run(ctx context.Context, args map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, ok := args["path"]
	if !ok {
		return nil, fmt.Errorf("%w: field 'path' is required", ErrInvalidArguments)
	}
	path, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: field 'path' must be a string", ErrInvalidArguments)
	}

	showHidden, _ := args["show_hidden"].(bool)

	return l.List(scenario.ParsePath(path), showHidden)
}

// List returns the entries of the directory at p, sorted by name.
func (l *ListDirectory) List(p scenario.Path, showHidden bool) (Listing, error) {
	dir, err := l.root.LookupDir(p)
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{Path: p}
	for _, e := range dir.Entries() {
		if !showHidden && strings.HasPrefix(e.Name, ".") {
			continue
		}
		switch n := e.Node.(type) {
		case *scenario.Dir:
			listing.Items = append(listing.Items, trace.ListingItem{Name: e.Name, IsDir: true})
			listing.counts = append(listing.counts, n.Len())
		case scenario.File:
			listing.Items = append(listing.Items, trace.ListingItem{Name: e.Name, Size: n.Size})
			listing.counts = append(listing.counts, 0)
		}
	}
	listing.sort()
	return listing, nil
}

// Listing is a directory result. It serializes to the trace payload shape and
// renders as text for the model.
type Listing struct {
	Path   scenario.Path
	Items  trace.Listing
	counts []int
}

func (l Listing) MarshalJSON() ([]byte, error) {
	return l.Items.MarshalJSON()
}

func (l *Listing) sort() {
	// insertion sort keeps Items and counts aligned
	for i := 1; i < len(l.Items); i++ {
		for j := i; j > 0 && l.Items[j].Name < l.Items[j-1].Name; j-- {
			l.Items[j], l.Items[j-1] = l.Items[j-1], l.Items[j]
			l.counts[j], l.counts[j-1] = l.counts[j-1], l.counts[j]
		}
	}
}

// String renders the listing the way a shell-backed tool would.
func (l Listing) String() string {
	if len(l.Items) == 0 {
		return fmt.Sprintf("Directory '%s' is empty", l.Path)
	}

	lines := []string{fmt.Sprintf("Contents of '%s':", l.Path)}
	for i, item := range l.Items {
		if item.IsDir {
			lines = append(lines, fmt.Sprintf("  %s/ (directory, %d items)", item.Name, l.counts[i]))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s (file, %s bytes)", item.Name, groupThousands(item.Size)))
	}
	return strings.Join(lines, "\n")
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
