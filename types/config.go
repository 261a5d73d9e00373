package types

const (
	OpenAI = "openai"
	Cohere = "cohere"
)

type Config struct {
	Provider        string  `yaml:"provider" validate:"oneof=openai cohere"`
	APIKey          string  `yaml:"api_key"`
	APIKeyFile      string  `yaml:"api_key_file"`
	Model           string  `yaml:"model" validate:"required"`
	MaxTokens       int     `yaml:"max_tokens" validate:"gte=0"`
	Temperature     float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	URL             string  `yaml:"url" validate:"omitempty,url"`
	CompletionsPath string  `yaml:"completions_path" validate:"omitempty,startswith=/"`
	AuthHeader      string  `yaml:"auth_header"`
	AuthTokenPrefix string  `yaml:"auth_token_prefix"`

	// Agent budgets, 0 means unlimited except for max_turns.
	MaxTurns     int `yaml:"max_turns" validate:"gte=1"`
	MaxLLMTokens int `yaml:"max_llm_tokens" validate:"gte=0"`
	MaxToolCalls int `yaml:"max_tool_calls" validate:"gte=0"`
	MaxWallTime  int `yaml:"max_wall_time" validate:"gte=0"`

	// Evaluation
	TestPrefix       string   `yaml:"test_prefix"`
	TestSuffix       string   `yaml:"test_suffix"`
	InitialPath      string   `yaml:"initial_path"`
	IgnoredDirs      []string `yaml:"ignored_dirs" validate:"dive,required,excludes=/"`
	SameTurnChaining bool     `yaml:"same_turn_chaining"`

	Debug bool `yaml:"debug"`
}
