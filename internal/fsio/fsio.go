package fsio

import "os"

type Reader interface {
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]os.DirEntry, error)
}

type Writer interface {
	MkdirAll(path string) error
	WriteFile(name string, data []byte) error
}

type RealReader struct{}

func NewRealReader() *RealReader { return &RealReader{} }

func (r *RealReader) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (r *RealReader) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

type RealWriter struct{}

func NewRealWriter() *RealWriter { return &RealWriter{} }

func (w *RealWriter) MkdirAll(path string) error { return os.MkdirAll(path, 0o755) }

func (w *RealWriter) WriteFile(name string, data []byte) error {
	return os.WriteFile(name, data, 0o644)
}
