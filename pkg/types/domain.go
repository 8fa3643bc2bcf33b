package types

// Model is one entry of the model catalog, configured or discovered on disk.
type Model struct {
	// Name used to open the model.
	// example: gemma-2-2b-it
	Name string `json:"name" yaml:"name" example:"gemma-2-2b-it"`
	// Model file as written in configuration or found in the models dir.
	// example: gemma-2-2b-it-Q4_K_M.gguf
	File string `json:"file" yaml:"file" example:"gemma-2-2b-it-Q4_K_M.gguf"`
	// Absolute path the file resolves to.
	// example: /home/user/.agentd/models/gemma-2-2b-it-Q4_K_M.gguf
	Path string `json:"path" yaml:"path" example:"/home/user/.agentd/models/gemma-2-2b-it-Q4_K_M.gguf"`
	// Human readable description.
	Description string `json:"description,omitempty" yaml:"description,omitempty" example:"Gemma 2 2B instruct"`
	// Context window in tokens, if known.
	// example: 4096
	ContextSize int `json:"context_size,omitempty" yaml:"context_size,omitempty" example:"4096"`
	// Where the entry came from: config or discovered.
	// example: config
	Source string `json:"source" yaml:"source" example:"config"`
	// Whether the file exists on disk.
	// example: true
	Available bool `json:"available" yaml:"available" example:"true"`
	// File size in bytes; 0 when unavailable.
	SizeBytes int64 `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty" example:"1708582752"`
}

// Invocation mirrors the resolved executable, model and flags of an open handle.
type Invocation struct {
	// example: llama-cli
	ExecutablePath string `json:"executable_path" yaml:"executable_path" example:"llama-cli"`
	// example: /home/user/.agentd/models/gemma-2-2b-it-Q4_K_M.gguf
	ModelPath string `json:"model_path" yaml:"model_path"`
	// example: ["--temp","0.7","--top-p","0.9"]
	AdditionalArgs []string `json:"additional_args" yaml:"additional_args"`
}
