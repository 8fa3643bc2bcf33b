package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the persisted agentd configuration.
// Zero values in override files leave the defaults untouched.
type Config struct {
	Runtime  RuntimeConfig         `json:"runtime" yaml:"runtime" toml:"runtime"`
	Models   map[string]ModelEntry `json:"models" yaml:"models" toml:"models"`
	Defaults DefaultParams         `json:"defaults" yaml:"defaults" toml:"defaults"`
	Server   ServerConfig          `json:"server" yaml:"server" toml:"server"`
	Log      LogConfig             `json:"log" yaml:"log" toml:"log"`
}

// RuntimeConfig selects and tunes the generation executable.
type RuntimeConfig struct {
	DefaultBackend  string `json:"default_backend" yaml:"default_backend" toml:"default_backend"`
	LlamaExecutable string `json:"llama_executable" yaml:"llama_executable" toml:"llama_executable"`
	UseGPU          bool   `json:"use_gpu" yaml:"use_gpu" toml:"use_gpu"`
	GPULayers       *int   `json:"gpu_layers,omitempty" yaml:"gpu_layers,omitempty" toml:"gpu_layers,omitempty"`
	// ExtraArgs is split with shell quoting rules and appended after the sampling flags.
	ExtraArgs string `json:"extra_args,omitempty" yaml:"extra_args,omitempty" toml:"extra_args,omitempty"`
	// RawOutput disables prompt-echo cleaning of the executable's stdout.
	RawOutput      bool `json:"raw_output" yaml:"raw_output" toml:"raw_output"`
	TimeoutSeconds int  `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// ModelEntry is a named model file. File is relative to the models dir unless absolute.
type ModelEntry struct {
	File        string  `json:"file" yaml:"file" toml:"file"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	ContextSize *int    `json:"context_size,omitempty" yaml:"context_size,omitempty" toml:"context_size,omitempty"`
}

// DescriptionOr returns the description or fallback when unset.
func (e ModelEntry) DescriptionOr(fallback string) string {
	if e.Description == nil || *e.Description == "" {
		return fallback
	}
	return *e.Description
}

// DefaultParams are the sampling parameters passed to every generation.
type DefaultParams struct {
	Temperature   float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopP          float64 `json:"top_p" yaml:"top_p" toml:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty" yaml:"repeat_penalty" toml:"repeat_penalty"`
	MaxTokens     int     `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
}

// ServerConfig tunes `agentd serve`.
type ServerConfig struct {
	Addr         string   `json:"addr" yaml:"addr" toml:"addr"`
	SessionTTL   Duration `json:"session_ttl" yaml:"session_ttl" toml:"session_ttl"`
	CORSOrigins  []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty" toml:"cors_origins,omitempty"`
	Swagger      bool     `json:"swagger" yaml:"swagger" toml:"swagger"`
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// MaxConcurrent caps generations running at once; 0 means no cap.
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent"`
	// QueueWait is how long a request waits for a slot before a 429.
	QueueWait Duration `json:"queue_wait" yaml:"queue_wait" toml:"queue_wait"`
}

// LogConfig holds logger defaults; CLI flags take precedence.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}

// Duration decodes "15m"-style strings from TOML, YAML and JSON.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration used when no files exist.
func Default() Config {
	return Config{
		Runtime: RuntimeConfig{
			DefaultBackend:  "llama.cpp",
			LlamaExecutable: "llama-cli",
		},
		Models: map[string]ModelEntry{},
		Defaults: DefaultParams{
			Temperature:   0.7,
			TopP:          0.9,
			RepeatPenalty: 1.1,
			MaxTokens:     256,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			SessionTTL:   Duration(15 * time.Minute),
			Swagger:      true,
			MaxBodyBytes: 1 << 20,
			QueueWait:    Duration(30 * time.Second),
		},
		Log: LogConfig{Level: "warn", Format: "console"},
	}
}

// Paths locates the agentd home layout:
//
//	<home>/config/config.toml
//	<home>/config/models.toml
//	<home>/models/*.gguf
type Paths struct {
	Home string
}

// DefaultPaths uses $AGENTD_HOME, falling back to ~/.agentd.
func DefaultPaths() (Paths, error) {
	if h := os.Getenv("AGENTD_HOME"); h != "" {
		return Paths{Home: h}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("home dir: %w", err)
	}
	return Paths{Home: filepath.Join(home, ".agentd")}, nil
}

func (p Paths) ConfigDir() string  { return filepath.Join(p.Home, "config") }
func (p Paths) ModelsDir() string  { return filepath.Join(p.Home, "models") }
func (p Paths) ConfigFile() string { return filepath.Join(p.ConfigDir(), "config.toml") }
func (p Paths) ModelsFile() string { return filepath.Join(p.ConfigDir(), "models.toml") }
