package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, applies secrets from the environment and
// validates the result.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadServer is Load for the director proxy.
func LoadServer(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateServer(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env into the process environment if the file exists.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv(os.Getenv)
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	keys := splitList(getenv("GEMINI_API_KEYS"))
	if len(keys) == 0 {
		keys = splitList(getenv("GEMINI_API_KEY"))
	}
	c.Gemini.APIKeys = keys
	c.OpenAI.APIKey = getenv("OPENAI_API_KEY")
	if v := getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	c.Embedding.APIKey = getenv("COHERE_API_KEY")
	c.Director.Token = getenv("DIRECTOR_TOKEN")
	c.Server.RedisPassword = getenv("REDIS_PASSWORD")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
