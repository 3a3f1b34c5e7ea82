package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for embedkit.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Search    SearchConfig    `yaml:"search"`
	Chat      ChatConfig      `yaml:"chat"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbeddingConfig selects and parameterizes the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "cohere", "mock"
	Model     string `yaml:"model"`       // e.g. "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // environment variable holding the API key
	BaseURL   string `yaml:"base_url"`    // empty selects the provider's public endpoint
	InputType string `yaml:"input_type"`  // cohere only
	Dimension int    `yaml:"dimension"`   // 0 selects the model default
	BatchSize int    `yaml:"batch_size"`
}

// IndexConfig controls where indexes live and how corpora are ingested.
type IndexConfig struct {
	Dir        string   `yaml:"dir"`     // index root directory
	Storage    string   `yaml:"storage"` // "file" or "bolt"
	Includes   []string `yaml:"includes"`
	Excludes   []string `yaml:"excludes"`
	ChunkChars int      `yaml:"chunk_chars"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"` // filter results below this score (0 = disabled)
}

// ChatConfig parameterizes the chat model and conversation logging.
type ChatConfig struct {
	Model            string   `yaml:"model"`
	APIKeyEnv        string   `yaml:"api_key_env"`
	Temperature      float64  `yaml:"temperature"`
	P                float64  `yaml:"p"`
	FrequencyPenalty *float64 `yaml:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `yaml:"presence_penalty,omitempty"`
	SystemPrompt     string   `yaml:"system_prompt"`
	ConversationsDir string   `yaml:"conversations_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			BatchSize: 100,
		},
		Index: IndexConfig{
			Dir:        "indexes",
			Storage:    "file",
			Includes:   []string{"**/*.md", "**/*.txt"},
			Excludes:   []string{"**/node_modules/**", "**/.git/**", "**/vendor/**"},
			ChunkChars: 2000,
		},
		Search: SearchConfig{
			TopK: 5,
		},
		Chat: ChatConfig{
			Model:            "command-r-plus-08-2024",
			APIKeyEnv:        "COHERE_API_KEY",
			Temperature:      0.7,
			P:                0,
			SystemPrompt:     "You are a helpful assistant.",
			ConversationsDir: "conversations",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for embedkit.yaml,
// then .embedkit/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "embedkit.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".embedkit", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDir resolves the index root relative to a base directory.
func IndexDir(base string, cfg *Config) string {
	if filepath.IsAbs(cfg.Index.Dir) {
		return cfg.Index.Dir
	}
	return filepath.Join(base, cfg.Index.Dir)
}

// ConversationsDir resolves the conversation log root relative to a base
// directory.
func ConversationsDir(base string, cfg *Config) string {
	if filepath.IsAbs(cfg.Chat.ConversationsDir) {
		return cfg.Chat.ConversationsDir
	}
	return filepath.Join(base, cfg.Chat.ConversationsDir)
}
