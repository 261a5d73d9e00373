package internal

import (
	"os"
	"path/filepath"
)

const (
	ConfigHomeEnv    = "AGENTIC_CONFIG_HOME"
	DataHomeEnv      = "AGENTIC_DATA_HOME"
	CacheHomeEnv     = "AGENTIC_CACHE_HOME"
	DefaultConfigDir = ".agentic"
	DefaultDataDir   = "traces"
	DefaultCacheDir  = "cache"
)

func GetConfigHome() (string, error) {
	var result string

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	result = filepath.Join(homeDir, DefaultConfigDir)

	if tmp := os.Getenv(ConfigHomeEnv); tmp != "" {
		result = tmp
	}

	return result, nil
}

// GetDataHome is where recorded traces are kept.
func GetDataHome() (string, error) {
	var result string

	configHome, err := GetConfigHome()
	if err != nil {
		return "", err
	}

	result = filepath.Join(configHome, DefaultDataDir)

	if tmp := os.Getenv(DataHomeEnv); tmp != "" {
		result = tmp
	}

	return result, nil
}

// GetCacheHome is where agent transcripts and debug logs are written.
func GetCacheHome() (string, error) {
	var result string

	configHome, err := GetConfigHome()
	if err != nil {
		return "", err
	}

	result = filepath.Join(configHome, DefaultCacheDir)

	if tmp := os.Getenv(CacheHomeEnv); tmp != "" {
		result = tmp
	}

	return result, nil
}
