package scam_detector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix         = "SCAM_DETECTOR_"
	configPathEnv     = "SCAM_DETECTOR_CONFIG"
	defaultConfigPath = "config.yaml"
)

// Config holds every setting of the detector. Values are layered:
// defaults, then the YAML file, then SCAM_DETECTOR_* environment variables.
type Config struct {
	Provider        string        `koanf:"provider"`
	Model           string        `koanf:"model"`
	APIKey          string        `koanf:"api_key"`
	BaseURL         string        `koanf:"base_url"`
	MaxRetries      int           `koanf:"max_retries"`
	RetryDelay      time.Duration `koanf:"retry_delay"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	Strategy        string        `koanf:"strategy"`
	PromptsDir      string        `koanf:"prompts_dir"`
	DatasetRoot     string        `koanf:"dataset_root"`
	OutputsDir      string        `koanf:"outputs_dir"`
	TextColumns     string        `koanf:"text_columns"`
	LabelColumn     string        `koanf:"label_column"`
	BearerToken     string        `koanf:"bearer_token"`
	SlackWebhookURL string        `koanf:"slack_webhook_url"`
	LogLevel        string        `koanf:"log_level"`
}

func defaultConfigValues() map[string]interface{} {
	return map[string]interface{}{
		"provider":        providerGemini,
		"max_retries":     defaultMaxRetries,
		"retry_delay":     defaultRetryDelay.String(),
		"request_timeout": "120s",
		"strategy":        defaultStrategy,
		"dataset_root":    ".",
		"outputs_dir":     "outputs",
		"text_columns":    "text,message_text,message",
		"label_column":    "label",
		"log_level":       "info",
	}
}

// LoadConfig reads the configuration. path may be empty, in which case
// SCAM_DETECTOR_CONFIG or ./config.yaml is used when present.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfigValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = strings.TrimSpace(os.Getenv(configPathEnv))
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				secondsToDurationHook,
				mapstructure.StringToTimeDurationHookFunc(),
			),
			WeaklyTypedInput: true,
			Result:           cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.BearerToken == "" {
		cfg.BearerToken = strings.TrimSpace(os.Getenv("BEARER_TOKEN"))
	}
	if cfg.SlackWebhookURL == "" {
		cfg.SlackWebhookURL = strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL"))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHook reads bare numbers ("2", 2, 0.5) as seconds.
func secondsToDurationHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != durationType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
	case reflect.String:
		if secs, err := strconv.ParseFloat(strings.TrimSpace(reflect.ValueOf(data).String()), 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
	}
	return data, nil
}

func (c *Config) validate() error {
	var problems []string
	if c.MaxRetries < 1 {
		problems = append(problems, "max_retries must be at least 1")
	}
	if c.RetryDelay < 0 {
		problems = append(problems, "retry_delay must not be negative")
	}
	if _, ok := providerFactories[parseModelSpec(c.Model, c.Provider).Provider]; !ok {
		problems = append(problems, fmt.Sprintf("unsupported provider %q", c.Provider))
	}
	if level := strings.ToLower(strings.TrimSpace(c.LogLevel)); level != "" {
		if _, err := zap.ParseAtomicLevel(level); err != nil {
			problems = append(problems, fmt.Sprintf("unsupported log_level %q", c.LogLevel))
		}
	}
	if c.Strategy != "" && !isSupportedStrategy(strings.ToLower(c.Strategy)) {
		problems = append(problems, fmt.Sprintf("unsupported strategy %q", c.Strategy))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, ", "))
	}
	return nil
}

// apiKeyFor returns the configured key or the provider's well-known variable.
func (c *Config) apiKeyFor(provider string) string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	switch provider {
	case providerOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case providerGemini:
		if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
			return key
		}
		return strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}
	return ""
}

// TextColumnList splits the comma-separated text_columns setting.
func (c *Config) TextColumnList() []string {
	var cols []string
	for _, col := range strings.Split(c.TextColumns, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}
