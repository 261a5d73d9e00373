package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const maxAPIKeyFileBytes int64 = 10 * 1024

var ErrAPIKeyFile = errors.New("api key file")

// ReadAPIKeyFile reads a key kept outside the config file. The file must be
// a small regular file; surrounding whitespace is dropped.
func ReadAPIKeyFile(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAPIKeyFile, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAPIKeyFile, err)
	}
	if !st.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrAPIKeyFile, path)
	}

	b, err := io.ReadAll(io.LimitReader(f, maxAPIKeyFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAPIKeyFile, err)
	}
	if int64(len(b)) > maxAPIKeyFileBytes {
		return "", fmt.Errorf("%w: larger than %d bytes", ErrAPIKeyFile, maxAPIKeyFileBytes)
	}

	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrAPIKeyFile, path)
	}
	return key, nil
}
