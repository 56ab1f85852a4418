// Package docs holds the OpenAPI description served under /api/swagger.
// It follows the layout swag emits; keep it in step with the handler
// annotations when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/chat": {
            "post": {
                "description": "Relays the conversation to the upstream provider and streams the reply as Server-Sent Events.\nFailures before the first token are plain JSON errors. Later failures arrive as an ` + "`" + `error` + "`" + ` event.",
                "consumes": ["application/json"],
                "produces": ["text/event-stream"],
                "tags": ["Chats"],
                "summary": "Send a message",
                "parameters": [
                    {
                        "description": "Message or conversation",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/service.CreateMessageRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StreamResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/chats": {
            "get": {
                "description": "Lists saved chats, optionally filtered by a case-insensitive title search.",
                "produces": ["application/json"],
                "tags": ["Chats"],
                "summary": "List saved chats",
                "parameters": [
                    {"type": "string", "description": "Title substring", "name": "search", "in": "query"},
                    {"type": "string", "description": "newest (default) or oldest", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Chat"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/chats/{chatID}": {
            "get": {
                "description": "Returns a saved chat with its full transcript.",
                "produces": ["application/json"],
                "tags": ["Chats"],
                "summary": "Get a chat",
                "parameters": [
                    {"type": "string", "description": "Chat ID", "name": "chatID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.FullChat"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Chats"],
                "summary": "Delete a chat",
                "parameters": [
                    {"type": "string", "description": "Chat ID", "name": "chatID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/credential": {
            "get": {
                "description": "Reports whether a key is stored and whether it last validated. Never contacts the provider.",
                "produces": ["application/json"],
                "tags": ["Credential"],
                "summary": "Credential status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.CredentialStatus"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Validates the key with one model-listing call and stores it when the provider accepts it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Credential"],
                "summary": "Validate and save a key",
                "parameters": [
                    {
                        "description": "API key",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.TokenRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ValidationResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ValidationResult"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ValidationResult"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Credential"],
                "summary": "Clear the stored key",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/credential/validate": {
            "post": {
                "description": "Validates a key without storing it. The key comes from the body or the X-API-Key header.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Credential"],
                "summary": "Validate a key",
                "parameters": [
                    {"description": "API key", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/api.TokenRequest"}},
                    {"type": "string", "description": "API key", "name": "X-API-Key", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ValidationResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ValidationResult"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ValidationResult"}}
                }
            }
        },
        "/v1/models": {
            "get": {
                "description": "Lists the supported chat models the stored key can use.",
                "produces": ["application/json"],
                "tags": ["Models"],
                "summary": "List models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ModelList"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/v1/settings": {
            "get": {
                "description": "Returns the custom instructions and the default model.",
                "produces": ["application/json"],
                "tags": ["Settings"],
                "summary": "Get settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Settings"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Saves the custom instructions and the default model. The model must be one the provider supports.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Settings"],
                "summary": "Update settings",
                "parameters": [
                    {
                        "description": "New settings",
                        "name": "settings",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/service.Settings"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "chat_id": {"type": "string"},
                "code": {"type": "string"},
                "error": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "api.TokenRequest": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string", "example": "sk-..."}
            }
        },
        "model.Chat": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "model": {"type": "string"},
                "title": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "model.FullChat": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/model.Message"}},
                "model": {"type": "string"},
                "title": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "model.Message": {
            "type": "object",
            "required": ["content", "role"],
            "properties": {
                "content": {"type": "string"},
                "id": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "assistant"]},
                "timestamp": {"type": "string"}
            }
        },
        "model.StreamResponse": {
            "type": "object",
            "properties": {
                "chat_id": {"type": "string"},
                "code": {"type": "string"},
                "content": {"type": "string"},
                "done": {"type": "boolean"},
                "error": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "model.ValidationResult": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"},
                "model": {"type": "string"},
                "models": {"type": "array", "items": {"type": "string"}},
                "outcome": {"type": "string"},
                "status": {"type": "integer"},
                "valid": {"type": "boolean"}
            }
        },
        "service.CreateMessageRequest": {
            "type": "object",
            "properties": {
                "chat_id": {"type": "string"},
                "content": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/model.Message"}},
                "model": {"type": "string"}
            }
        },
        "service.CredentialStatus": {
            "type": "object",
            "properties": {
                "last_validated": {"type": "string"},
                "masked_key": {"type": "string"},
                "status": {"type": "string", "enum": ["missing", "stored", "invalid"]}
            }
        },
        "service.ModelList": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"type": "string"}},
                "provider": {"type": "string"}
            }
        },
        "service.Settings": {
            "type": "object",
            "required": ["default_model"],
            "properties": {
                "custom_instructions": {"type": "string", "maxLength": 4000},
                "default_model": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Cosmic Chat API",
	Description:      "Credential-gated streaming relay to an upstream LLM provider.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
