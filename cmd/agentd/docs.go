package main

// General API documentation for swaggo. Regenerate docs/ with
// `swag init -g cmd/agentd/docs.go -d ./,./internal/httpapi -o docs`.
//
// @title           agentd API
// @version         1.0
// @description     HTTP binding for opening local GGUF models by name and generating text through llama.cpp.
//
// @contact.name   agentd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
