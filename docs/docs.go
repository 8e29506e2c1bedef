// Package docs registers the OpenAPI description served at /swagger/*.
// The template is kept in step with the handler annotations by hand.
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
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}}}}
        },
        "/health/ready": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/httputil.Envelope"}}}}
        },
        "/api/auth/register": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["auth"], "summary": "Register a new user",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httputil.Envelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/httputil.Envelope"}},
                    "409": {"description": "Email already exists", "schema": {"$ref": "#/definitions/httputil.Envelope"}}}}
        },
        "/api/auth/login": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["auth"], "summary": "User login",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/httputil.Envelope"}}}}
        },
        "/api/auth/refresh": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["auth"], "summary": "Refresh access token",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.RefreshRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}},
                    "401": {"description": "Invalid or expired refresh token", "schema": {"$ref": "#/definitions/httputil.Envelope"}}}}
        },
        "/api/auth/logout": {
            "post": {"produces": ["application/json"], "tags": ["auth"], "summary": "User logout",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}}}}
        },
        "/api/tasks": {
            "get": {"produces": ["application/json"], "tags": ["tasks"], "summary": "List tasks", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"type": "string", "name": "page", "in": "query"},
                    {"type": "string", "name": "limit", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["tasks"], "summary": "Create a task", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/task.CreateInput"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/httputil.Envelope"}}}}
        },
        "/api/tasks/{id}": {
            "get": {"produces": ["application/json"], "tags": ["tasks"], "summary": "Get a task", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}}, "404": {"description": "Task not found"}}},
            "patch": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["tasks"], "summary": "Update a task", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/task.UpdateInput"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}}, "400": {"description": "Invalid status"}, "404": {"description": "Task not found"}}},
            "delete": {"produces": ["application/json"], "tags": ["tasks"], "summary": "Delete a task", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}}, "404": {"description": "Task not found"}}}
        },
        "/api/tasks/{id}/toggle": {
            "patch": {"produces": ["application/json"], "tags": ["tasks"], "summary": "Toggle task status", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.Envelope"}}, "404": {"description": "Task not found"}}}
        }
    },
    "definitions": {
        "httputil.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "code": {"type": "string"},
                "data": {},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "auth.RegisterRequest": {
            "type": "object", "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string", "minLength": 6}}
        },
        "auth.LoginRequest": {
            "type": "object", "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "auth.RefreshRequest": {
            "type": "object", "required": ["refreshToken"],
            "properties": {"refreshToken": {"type": "string"}}
        },
        "task.CreateInput": {
            "type": "object", "required": ["title"],
            "properties": {"title": {"type": "string", "maxLength": 200}, "description": {"type": "string", "maxLength": 1000}}
        },
        "task.UpdateInput": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "description": {"type": "string", "maxLength": 1000},
                "status": {"type": "string", "enum": ["pending", "in_progress", "completed"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tasks API",
	Description:      "Task management API with stateless JWT or PASETO authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
