// Package llm runs text generation through an external executable.
//
// A Backend is bound to one InvocationSpec. Every Generate call spawns a fresh
// child process, writes the prompt to its stdin, waits for it to exit and
// returns its cleaned stdout.
package llm

import (
	"context"
	"strconv"

	"agentd/internal/config"
)

// InvocationSpec is the resolved executable, model file and ordered flag list
// for a generation call.
type InvocationSpec struct {
	ExecutablePath string   `json:"executable_path" yaml:"executable_path"`
	ModelPath      string   `json:"model_path" yaml:"model_path"`
	ExtraArgs      []string `json:"additional_args" yaml:"additional_args"`
}

// NewInvocationSpec returns a spec with no extra flags.
func NewInvocationSpec(executable, modelPath string) InvocationSpec {
	return InvocationSpec{ExecutablePath: executable, ModelPath: modelPath}
}

// Argv returns the child's argument list: --model <path> followed by ExtraArgs.
func (s InvocationSpec) Argv() []string {
	argv := make([]string, 0, 2+len(s.ExtraArgs))
	argv = append(argv, "--model", s.ModelPath)
	return append(argv, s.ExtraArgs...)
}

// WithArgs returns a copy of s whose flag list is replaced by args.
func (s InvocationSpec) WithArgs(args []string) InvocationSpec {
	s.ExtraArgs = append([]string(nil), args...)
	return s
}

// Clone returns a deep copy of s.
func (s InvocationSpec) Clone() InvocationSpec {
	return s.WithArgs(s.ExtraArgs)
}

// defaultGPULayers is offloaded when use_gpu is set without gpu_layers.
const defaultGPULayers = 8

// SpecFromConfig builds the default invocation for modelPath from cfg.
// entry may be nil when the model has no configured metadata.
func SpecFromConfig(cfg config.Config, modelPath string, entry *config.ModelEntry) (InvocationSpec, error) {
	d := cfg.Defaults
	args := []string{
		"--temp", formatFloat(d.Temperature),
		"--top-p", formatFloat(d.TopP),
		"--repeat-penalty", formatFloat(d.RepeatPenalty),
		"--n-predict", strconv.Itoa(d.MaxTokens),
	}
	if entry != nil && entry.ContextSize != nil && *entry.ContextSize > 0 {
		args = append(args, "--ctx-size", strconv.Itoa(*entry.ContextSize))
	}
	if cfg.Runtime.UseGPU {
		layers := defaultGPULayers
		if cfg.Runtime.GPULayers != nil {
			layers = *cfg.Runtime.GPULayers
		}
		args = append(args, "--n-gpu-layers", strconv.Itoa(layers))
	}
	extra, err := ParseArgs(cfg.Runtime.ExtraArgs)
	if err != nil {
		return InvocationSpec{}, err
	}
	args = append(args, extra...)
	return InvocationSpec{
		ExecutablePath: cfg.Runtime.LlamaExecutable,
		ModelPath:      modelPath,
		ExtraArgs:      args,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Backend is a generation capability bound to one executable convention.
type Backend interface {
	// Generate runs one prompt to completion and returns the cleaned response.
	Generate(ctx context.Context, prompt string) (string, error)
	// Config returns a copy of the invocation the backend runs.
	Config() InvocationSpec
	// WithArgs returns a backend whose flag list is replaced by args.
	WithArgs(args []string) Backend
}
