package test

import (
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	. "github.com/onsi/gomega"
)

// FixturePath resolves a file under test/data.
func FixturePath(fileName string) (string, error) {
	_, thisFile, _, _ := runtime.Caller(0)

	if strings.Contains(thisFile, "vendor") {
		return filepath.Abs(path.Join(thisFile, "../../../../../..", "test", "data", fileName))
	}
	return filepath.Abs(path.Join(thisFile, "../..", "test", "data", fileName))
}

func FileToBytes(fileName string) ([]byte, error) {
	urlPath, err := FixturePath(fileName)
	if err != nil {
		return nil, err
	}

	Expect(urlPath).To(BeAnExistingFile())

	return os.ReadFile(urlPath)
}
