package eval

import (
	"strings"

	"github.com/kardolus/agentic/scenario"
)

const (
	DefaultTestPrefix = "test_"
	DefaultTestSuffix = ".py"
)

// Predicate decides whether a file name counts as a test file.
type Predicate func(name string) bool

func NewAffixPredicate(prefix, suffix string) Predicate {
	return func(name string) bool {
		return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
	}
}

var DefaultTestFile = NewAffixPredicate(DefaultTestPrefix, DefaultTestSuffix)

type FileRef struct {
	Path scenario.Path
	Size int64
}

func (f FileRef) Name() string {
	if len(f.Path) == 0 {
		return ""
	}
	return f.Path[len(f.Path)-1]
}

// GroundTruth is everything a correct run must find, computed from the
// scenario alone.
type GroundTruth struct {
	AllFiles      []FileRef
	TestFiles     []FileRef
	RequiredPaths []scenario.Path
	ExpectedSum   int64
}

// Extract walks root once. Required paths are every directory that holds a
// matching file at any depth, in pre-order; the root is included whenever a
// test file exists.
func Extract(root *scenario.Dir, match Predicate) GroundTruth {
	if match == nil {
		match = DefaultTestFile
	}

	var gt GroundTruth
	gt.RequiredPaths, _ = extract(root, scenario.Root(), match, &gt)
	return gt
}

func extract(dir *scenario.Dir, at scenario.Path, match Predicate, gt *GroundTruth) ([]scenario.Path, bool) {
	var (
		below []scenario.Path
		found bool
	)

	for _, e := range dir.Entries() {
		p := at.Child(e.Name)

		switch n := e.Node.(type) {
		case scenario.File:
			ref := FileRef{Path: p, Size: n.Size}
			gt.AllFiles = append(gt.AllFiles, ref)
			if match(e.Name) {
				gt.TestFiles = append(gt.TestFiles, ref)
				gt.ExpectedSum += n.Size
				found = true
			}
		case *scenario.Dir:
			sub, ok := extract(n, p, match, gt)
			if ok {
				below = append(below, sub...)
				found = true
			}
		}
	}

	if !found {
		return nil, false
	}
	return append([]scenario.Path{at}, below...), true
}

// TestFileSizes returns the distinct sizes of the matching files.
func (g GroundTruth) TestFileSizes() map[int64]struct{} {
	out := make(map[int64]struct{}, len(g.TestFiles))
	for _, f := range g.TestFiles {
		out[f.Size] = struct{}{}
	}
	return out
}

// IsRequired reports whether p is one of the required directories.
func (g GroundTruth) IsRequired(p scenario.Path) bool {
	for _, r := range g.RequiredPaths {
		if r.Equal(p) {
			return true
		}
	}
	return false
}

// Summary is the serializable form printed by the truth command.
type Summary struct {
	ExpectedSum   int64            `yaml:"expected_sum" json:"expected_sum"`
	NumTestFiles  int              `yaml:"num_test_files" json:"num_test_files"`
	TestFiles     map[string]int64 `yaml:"test_files" json:"test_files"`
	RequiredPaths []string         `yaml:"required_paths" json:"required_paths"`
	NumFiles      int              `yaml:"num_files" json:"num_files"`
}

func (g GroundTruth) Summary() Summary {
	s := Summary{
		ExpectedSum:   g.ExpectedSum,
		NumTestFiles:  len(g.TestFiles),
		TestFiles:     make(map[string]int64, len(g.TestFiles)),
		RequiredPaths: make([]string, 0, len(g.RequiredPaths)),
		NumFiles:      len(g.AllFiles),
	}
	for _, f := range g.TestFiles {
		s.TestFiles[f.Path.String()] = f.Size
	}
	for _, p := range g.RequiredPaths {
		s.RequiredPaths = append(s.RequiredPaths, p.String())
	}
	return s
}
