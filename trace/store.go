package trace

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kardolus/agentic/internal/fsio"
)

const fileExtension = ".json"

var ErrNoTraceID = errors.New("trace has no id")

type Store interface {
	List() ([]string, error)
	Read(id string) (Trace, error)
	Write(Trace) (string, error)
}

// Ensure FileStore implements Store interface
var _ Store = &FileStore{}

// FileStore keeps one JSON document per run under dir.
type FileStore struct {
	dir    string
	reader fsio.Reader
	writer fsio.Writer
}

func NewFileStore(dir string, r fsio.Reader, w fsio.Writer) *FileStore {
	return &FileStore{dir: dir, reader: r, writer: w}
}

func (f *FileStore) Dir() string { return f.dir }

// Path returns the location of the trace with the given id.
func (f *FileStore) Path(id string) string {
	return filepath.Join(f.dir, id+fileExtension)
}

func (f *FileStore) List() ([]string, error) {
	entries, err := f.reader.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExtension) {
			continue
		}
		result = append(result, strings.TrimSuffix(e.Name(), fileExtension))
	}

	sort.Strings(result)
	return result, nil
}

func (f *FileStore) Read(id string) (Trace, error) {
	return Load(f.reader, f.Path(id))
}

func (f *FileStore) Write(t Trace) (string, error) {
	if t.ID == "" {
		return "", ErrNoTraceID
	}

	data, err := t.Marshal()
	if err != nil {
		return "", err
	}

	if err := f.writer.MkdirAll(f.dir); err != nil {
		return "", fmt.Errorf("create trace dir: %w", err)
	}

	path := f.Path(t.ID)
	if err := f.writer.WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
