package config

import (
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kardolus/agentic/internal"
	"github.com/kardolus/agentic/internal/fsio"
	"github.com/kardolus/agentic/types"
)

const (
	defaultProvider        = types.OpenAI
	defaultModel           = "gpt-4o-mini"
	defaultMaxTokens       = 4096
	defaultTemperature     = 0.0
	defaultURL             = "https://api.openai.com"
	defaultCompletionsPath = "/v1/chat/completions"
	defaultAuthHeader      = "Authorization"
	defaultAuthTokenPrefix = "Bearer "
	defaultMaxTurns        = 20
	defaultTestPrefix      = "test_"
	defaultTestSuffix      = ".py"
	defaultIgnoredDir      = "__pycache__"

	configFileName = "config.yaml"
)

type ConfigStore interface {
	Read() (types.Config, error)
	ReadDefaults() types.Config
	Write(types.Config) error
}

// Ensure FileIO implements ConfigStore interface
var _ ConfigStore = &FileIO{}

type FileIO struct {
	configFilePath string
	reader         fsio.Reader
	writer         fsio.Writer
}

func New(r fsio.Reader, w fsio.Writer) *FileIO {
	configPath, _ := getPath()

	return &FileIO{
		configFilePath: configPath,
		reader:         r,
		writer:         w,
	}
}

func (f *FileIO) WithConfigPath(configFilePath string) *FileIO {
	f.configFilePath = configFilePath
	return f
}

func (f *FileIO) Path() string { return f.configFilePath }

func (f *FileIO) Read() (types.Config, error) {
	var result types.Config

	buf, err := f.reader.ReadFile(f.configFilePath)
	if err != nil {
		return types.Config{}, err
	}

	if err := yaml.Unmarshal(buf, &result); err != nil {
		return types.Config{}, err
	}

	return result, nil
}

func (f *FileIO) ReadDefaults() types.Config {
	return types.Config{
		Provider:        defaultProvider,
		Model:           defaultModel,
		MaxTokens:       defaultMaxTokens,
		Temperature:     defaultTemperature,
		URL:             defaultURL,
		CompletionsPath: defaultCompletionsPath,
		AuthHeader:      defaultAuthHeader,
		AuthTokenPrefix: defaultAuthTokenPrefix,
		MaxTurns:        defaultMaxTurns,
		TestPrefix:      defaultTestPrefix,
		TestSuffix:      defaultTestSuffix,
		IgnoredDirs:     []string{defaultIgnoredDir},
	}
}

func (f *FileIO) Write(config types.Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	if err := f.writer.MkdirAll(filepath.Dir(f.configFilePath)); err != nil {
		return err
	}

	return f.writer.WriteFile(f.configFilePath, data)
}

func getPath() (string, error) {
	homeDir, err := internal.GetConfigHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, configFileName), nil
}
