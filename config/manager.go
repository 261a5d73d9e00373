package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kardolus/agentic/types"
)

const EnvPrefix = "AGENTIC_"

var ErrInvalidConfig = errors.New("invalid configuration")

type Manager struct {
	configStore ConfigStore
	Config      types.Config
}

// NewManager layers the config file over the defaults. A missing or
// unreadable file leaves the defaults in place.
func NewManager(cs ConfigStore) *Manager {
	configuration := cs.ReadDefaults()

	userConfig, err := cs.Read()
	if err == nil {
		configuration = replaceByConfigFile(configuration, userConfig)
	}

	return &Manager{configStore: cs, Config: configuration}
}

// WithEnvironment applies AGENTIC_<FIELD> overrides, where FIELD is the
// upper-cased yaml key.
func (c *Manager) WithEnvironment() *Manager {
	c.Config = replaceByEnvironment(c.Config)
	return c
}

// WithAPIKeyFile loads the key from api_key_file when no key is set.
func (c *Manager) WithAPIKeyFile() (*Manager, error) {
	if c.Config.APIKey != "" || c.Config.APIKeyFile == "" {
		return c, nil
	}

	key, err := ReadAPIKeyFile(c.Config.APIKeyFile)
	if err != nil {
		return nil, err
	}
	c.Config.APIKey = key
	return c, nil
}

func (c *Manager) APIKeyEnvVarName() string {
	return EnvPrefix + "API_KEY"
}

// ShowConfig serializes the current configuration to YAML with the API key
// masked.
func (c *Manager) ShowConfig() (string, error) {
	shown := c.Config
	if shown.APIKey != "" {
		shown.APIKey = "********"
	}

	data, err := yaml.Marshal(shown)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Save writes the current configuration to the store.
func (c *Manager) Save() error {
	return c.configStore.Write(c.Config)
}

// Validate checks the configuration against its struct tags.
func (c *Manager) Validate() error {
	return Validate(c.Config)
}

func Validate(cfg types.Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'", yamlName(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, ", "))
}

// yamlName maps IgnoredDirs[0] to ignored_dirs[0].
func yamlName(field string) string {
	name, index := field, ""
	if i := strings.IndexByte(field, '['); i >= 0 {
		name, index = field[:i], field[i:]
	}
	if f, ok := reflect.TypeOf(types.Config{}).FieldByName(name); ok {
		if tag := f.Tag.Get("yaml"); tag != "" {
			return tag + index
		}
	}
	return field
}

func replaceByConfigFile(defaultConfig, userConfig types.Config) types.Config {
	t := reflect.TypeOf(defaultConfig)
	vDefault := reflect.ValueOf(&defaultConfig).Elem()
	vUser := reflect.ValueOf(userConfig)

	for i := 0; i < t.NumField(); i++ {
		defaultField := vDefault.Field(i)
		userField := vUser.Field(i)

		switch defaultField.Kind() {
		case reflect.String:
			if userStr := userField.String(); userStr != "" {
				defaultField.SetString(userStr)
			}
		case reflect.Int:
			if userInt := int(userField.Int()); userInt != 0 {
				defaultField.SetInt(int64(userInt))
			}
		case reflect.Bool:
			defaultField.SetBool(userField.Bool())
		case reflect.Float64:
			if userFloat := userField.Float(); userFloat != 0.0 {
				defaultField.SetFloat(userFloat)
			}
		case reflect.Slice:
			if !userField.IsNil() {
				defaultField.Set(userField)
			}
		}
	}

	return defaultConfig
}

func replaceByEnvironment(configuration types.Config) types.Config {
	t := reflect.TypeOf(configuration)
	v := reflect.ValueOf(&configuration).Elem()

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")

		value, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(tag))
		if !ok || value == "" {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Int:
			intValue, _ := strconv.Atoi(value)
			field.SetInt(int64(intValue))
		case reflect.Bool:
			boolValue, _ := strconv.ParseBool(value)
			field.SetBool(boolValue)
		case reflect.Float64:
			floatValue, _ := strconv.ParseFloat(value, 64)
			field.SetFloat(floatValue)
		case reflect.Slice:
			var items []string
			for _, s := range strings.Split(value, ",") {
				if s = strings.TrimSpace(s); s != "" {
					items = append(items, s)
				}
			}
			field.Set(reflect.ValueOf(items))
		}
	}

	return configuration
}
