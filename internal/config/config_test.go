package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func validConfig() Config {
	return Config{
		Whisper: WhisperConfig{
			ModelPath:  "models/test.bin",
			BinaryPath: "./whisper",
			Language:   "en",
		},
		FFmpeg: FFmpegConfig{
			Encoder: "h264_videotoolbox",
		},
		Paths: PathsConfig{
			Input: "data/input",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing model path",
			mutate:  func(c *Config) { c.Whisper.ModelPath = "" },
			wantErr: true,
		},
		{
			name:    "missing paths",
			mutate:  func(c *Config) { c.Paths = PathsConfig{} },
			wantErr: true,
		},
		{
			name:    "unknown curator provider",
			mutate:  func(c *Config) { c.Curator.Provider = "oracle" },
			wantErr: true,
		},
		{
			name:    "director without url",
			mutate:  func(c *Config) { c.Curator.Provider = "director" },
			wantErr: true,
		},
		{
			name: "director with url",
			mutate: func(c *Config) {
				c.Curator.Provider = "director"
				c.Director.URL = "http://localhost:8080"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	want := BrollConfig{
		TagsFile:           "tags.json",
		MinRelevance:       0.34,
		MaxOverlayFraction: 0.6,
		MaxOverlaySeconds:  3,
		MinOverlaySeconds:  1,
		LeadInSeconds:      0.5,
		CooldownSegments:   2,
		HookSeconds:        5,
		TagWeight:          1,
		SemanticWeight:     0.5,
	}
	if diff := cmp.Diff(want, cfg.Broll); diff != "" {
		t.Errorf("broll defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Curator.Provider != "gemini" || cfg.Curator.MaxAttempts != 3 {
		t.Errorf("curator defaults = %+v", cfg.Curator)
	}
	if cfg.Captions.WordsPerCue != 3 {
		t.Errorf("WordsPerCue = %d, want 3", cfg.Captions.WordsPerCue)
	}
	if cfg.Kafka.Topic != "" {
		t.Errorf("Kafka.Topic = %q, want empty without brokers", cfg.Kafka.Topic)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	content := `
whisper:
  model_path: "models/test.bin"
  binary_path: "./whisper"
  language: "en"
  prompt: "test"

ffmpeg:
  video_bitrate: "5M"
  audio_codec: "aac"
  encoder: "h264_videotoolbox"

paths:
  input: "data/input"

curator:
  provider: "openai"
  timeout_seconds: 20

kafka:
  brokers: ["localhost:9092"]

logging:
  level: "info"
  format: "text"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GEMINI_API_KEYS", "k1, k2,,k3")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Whisper.ModelPath != "models/test.bin" {
		t.Errorf("ModelPath = %v, want %v", cfg.Whisper.ModelPath, "models/test.bin")
	}
	if cfg.Paths.Input != "data/input" {
		t.Errorf("Input = %v, want %v", cfg.Paths.Input, "data/input")
	}
	if diff := cmp.Diff([]string{"k1", "k2", "k3"}, cfg.Gemini.APIKeys); diff != "" {
		t.Errorf("APIKeys mismatch (-want +got):\n%s", diff)
	}
	if cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI = %+v", cfg.OpenAI)
	}
	if got := Seconds(cfg.Curator.TimeoutSeconds); got != 20*time.Second {
		t.Errorf("timeout = %v, want 20s", got)
	}
	if cfg.Kafka.Topic != "storycut.results" {
		t.Errorf("Kafka.Topic = %q", cfg.Kafka.Topic)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  daily_limit: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GEMINI_API_KEYS", "")
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := LoadServer(path); err == nil {
		t.Error("LoadServer() should fail without Gemini keys")
	}

	t.Setenv("GEMINI_API_KEY", "single")
	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.Server.DailyLimit != 5 || cfg.Server.Addr != ":8080" {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("STORYCUT_TEST_VALUE=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STORYCUT_TEST_VALUE", "")
	os.Unsetenv("STORYCUT_TEST_VALUE")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("STORYCUT_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("STORYCUT_TEST_VALUE = %q", got)
	}
}
