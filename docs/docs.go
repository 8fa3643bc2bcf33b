// Package docs holds the OpenAPI document of the agentd HTTP API.
// Regenerate with `swag init -g cmd/agentd/docs.go -d ./,./internal/httpapi -o docs` after changing
// handler annotations in internal/httpapi.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "agentd maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "description": "Configured models first, then models discovered in the models directory.",
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Describe a model",
                "parameters": [
                    {"type": "string", "description": "Model name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Model"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "description": "Resolves the model (or the first available one) and returns an opaque handle id. When args is non-empty it replaces the default flag list.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Open a model handle",
                "parameters": [
                    {"description": "Model and optional flags", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.OpenRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Inspect a handle",
                "parameters": [
                    {"type": "string", "description": "Handle id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["sessions"],
                "summary": "Close a handle",
                "parameters": [
                    {"type": "string", "description": "Handle id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/generate": {
            "post": {
                "description": "Runs one child process for the prompt and returns the cleaned text.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Generate with a handle",
                "parameters": [
                    {"type": "string", "description": "Handle id", "name": "id", "in": "path", "required": true},
                    {"description": "Prompt", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PromptRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/generate": {
            "post": {
                "description": "Opens the model, generates once and discards the handle.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "One-shot generate",
                "parameters": [
                    {"description": "Model, prompt and optional flags", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"},
                "kind": {"type": "string", "example": "invalid_model_path"}
            }
        },
        "types.GenerateRequest": {
            "type": "object",
            "properties": {
                "args": {"type": "array", "items": {"type": "string"}},
                "model": {"type": "string", "example": "gemma-2-2b-it"},
                "prompt": {"type": "string", "example": "What is the capital of France?"}
            }
        },
        "types.GenerateResponse": {
            "type": "object",
            "properties": {
                "duration_ms": {"type": "integer", "example": 812},
                "text": {"type": "string", "example": "Paris is the capital."}
            }
        },
        "types.Invocation": {
            "type": "object",
            "properties": {
                "additional_args": {"type": "array", "items": {"type": "string"}},
                "executable_path": {"type": "string", "example": "llama-cli"},
                "model_path": {"type": "string"}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean", "example": true},
                "context_size": {"type": "integer", "example": 4096},
                "description": {"type": "string", "example": "Gemma 2 2B instruct"},
                "file": {"type": "string", "example": "gemma-2-2b-it-Q4_K_M.gguf"},
                "name": {"type": "string", "example": "gemma-2-2b-it"},
                "path": {"type": "string"},
                "size_bytes": {"type": "integer", "example": 1708582752},
                "source": {"type": "string", "example": "config"}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}
            }
        },
        "types.OpenRequest": {
            "type": "object",
            "properties": {
                "args": {"type": "array", "items": {"type": "string"}},
                "model": {"type": "string", "example": "gemma-2-2b-it"}
            }
        },
        "types.PromptRequest": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string", "example": "What is the capital of France?"}
            }
        },
        "types.SessionResponse": {
            "type": "object",
            "properties": {
                "config": {"$ref": "#/definitions/types.Invocation"},
                "expires_at_unix": {"type": "integer", "example": 1700000000},
                "id": {"type": "string", "example": "6f1c2a9e0b7d4c11"},
                "model": {"type": "string", "example": "gemma-2-2b-it"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "agentd API",
	Description:      "HTTP binding for opening local GGUF models by name and generating text through llama.cpp.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
