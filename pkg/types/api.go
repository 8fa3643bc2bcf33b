package types

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// OpenRequest opens a session handle. An empty model picks the first available one.
type OpenRequest struct {
	// example: gemma-2-2b-it
	Model string `json:"model,omitempty" example:"gemma-2-2b-it"`
	// Replaces the default flag list when non-empty.
	// example: ["--n-gpu-layers","4","--temp","0.8"]
	Args []string `json:"args,omitempty"`
}

// SessionResponse describes an open handle.
type SessionResponse struct {
	// Opaque handle id.
	// example: 6f1c2a9e0b7d4c11
	ID    string `json:"id" example:"6f1c2a9e0b7d4c11"`
	Model string `json:"model" example:"gemma-2-2b-it"`
	// Invocation the handle runs for each prompt.
	Config Invocation `json:"config"`
	// Idle expiry, unix seconds.
	ExpiresAt int64 `json:"expires_at_unix" example:"1700000000"`
}

// PromptRequest is the body of POST /sessions/{id}/generate.
type PromptRequest struct {
	// example: What is the capital of France?
	Prompt string `json:"prompt" example:"What is the capital of France?"`
}

// GenerateRequest is the body of the one-shot POST /generate.
type GenerateRequest struct {
	// example: gemma-2-2b-it
	Model string `json:"model,omitempty" example:"gemma-2-2b-it"`
	// example: What is the capital of France?
	Prompt string `json:"prompt" example:"What is the capital of France?"`
	// Replaces the default flag list when non-empty.
	Args []string `json:"args,omitempty"`
}

// GenerateResponse carries the cleaned text.
type GenerateResponse struct {
	// example: Paris is the capital.
	Text string `json:"text" example:"Paris is the capital."`
	// example: 812
	DurationMS int64 `json:"duration_ms" example:"812"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// Failure kind, e.g. invalid_model_path.
	// example: invalid_model_path
	Kind string `json:"kind,omitempty" example:"invalid_model_path"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
