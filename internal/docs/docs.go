// Package docs registers the gateway's OpenAPI document with swag. Keep it
// in step with the @Router annotations on the handlers.
package docs

import (
	"net/http"

	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/v1/auth/me": {
            "get": {"tags": ["auth"], "summary": "Current user decoded from the bearer token",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/v1/surveys/{surveyId}": {
            "get": {"tags": ["surveys"], "summary": "Survey definition, without opening a session",
                "parameters": [{"name": "surveyId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Survey"}},
                    "404": {"description": "Survey not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Survey not active", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Connection error", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/v1/sessions": {
            "post": {"tags": ["sessions"], "summary": "Load a survey and open a wizard session",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartSessionRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/SessionView"}},
                    "404": {"description": "Survey not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Survey not active", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Connection error", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/v1/sessions/{id}": {
            "get": {"tags": ["sessions"], "summary": "Current wizard step",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}}},
            "delete": {"tags": ["sessions"], "summary": "Tear the session down, cancelling in-flight calls",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Closed"}}}
        },
        "/v1/sessions/{id}/answers/{order}": {
            "put": {"tags": ["sessions"], "summary": "Replace the answer of one question",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "order", "in": "path", "required": true, "type": "integer"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetAnswerRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}},
                    "409": {"description": "Locked", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "422": {"description": "Invalid answer", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/v1/sessions/{id}/next": {
            "post": {"tags": ["sessions"], "summary": "Advance to the next question",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}},
                    "422": {"description": "Answer required", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/v1/sessions/{id}/prev": {
            "post": {"tags": ["sessions"], "summary": "Go back one question",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}}}}
        },
        "/v1/sessions/{id}/submit": {
            "post": {"tags": ["sessions"], "summary": "Complete the survey",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SubmitOutcome"}},
                    "409": {"description": "In progress or already submitted", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "422": {"description": "Unanswered questions", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Backend rejected the completion; toast attached", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/v1/sessions/{id}/exit": {
            "post": {"tags": ["sessions"], "summary": "Leave the wizard",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ExitResponse"}},
                    "409": {"description": "Submission in progress", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/v1/sessions/{id}/toast": {
            "get": {"tags": ["sessions"], "summary": "Visible toast",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ToastResponse"}}}},
            "delete": {"tags": ["sessions"], "summary": "Dismiss the visible toast",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Dismissed"}}}
        },
        "/v1/drafts/{surveyId}": {
            "get": {"tags": ["drafts"], "summary": "Saved draft of a survey", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "surveyId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Draft"}},
                    "404": {"description": "No draft", "schema": {"$ref": "#/definitions/ErrorResponse"}}}},
            "put": {"tags": ["drafts"], "summary": "Save a draft of a survey", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "surveyId", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveDraftRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Draft"}},
                    "422": {"description": "Malformed draft", "schema": {"$ref": "#/definitions/ErrorResponse"}}}},
            "delete": {"tags": ["drafts"], "summary": "Remove the saved draft", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "surveyId", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Removed"}}}
        }
    },
    "definitions": {
        "ErrorResponse": {"type": "object", "properties": {
            "error": {"type": "string"}, "code": {"type": "string"}, "toast": {"$ref": "#/definitions/Toast"}}},
        "MeResponse": {"type": "object", "properties": {
            "authenticated": {"type": "boolean"}, "user": {"type": "object"}}},
        "Question": {"type": "object", "properties": {
            "orden": {"type": "integer"}, "texto": {"type": "string"},
            "tipo": {"type": "string", "enum": ["opcion_unica", "opcion_multiple", "texto_libre", "escala"]},
            "requerida": {"type": "boolean"}, "opciones": {"type": "array", "items": {"type": "string"}}}},
        "Survey": {"type": "object", "properties": {
            "_id": {"type": "string"}, "titulo": {"type": "string"}, "descripcion": {"type": "string"},
            "categoria": {"type": "string"}, "duracionEstimada": {"type": "integer"}, "activa": {"type": "boolean"},
            "preguntas": {"type": "array", "items": {"$ref": "#/definitions/Question"}}}},
        "StartSessionRequest": {"type": "object", "properties": {"surveyId": {"type": "string"}}},
        "SetAnswerRequest": {"type": "object", "properties": {
            "value": {"description": "A string, or a list of strings for opcion_multiple; null clears"}}},
        "Toast": {"type": "object", "properties": {
            "id": {"type": "string"}, "message": {"type": "string"},
            "severity": {"type": "string", "enum": ["success", "error"]},
            "shownAt": {"type": "string", "format": "date-time"}, "expiresAt": {"type": "string", "format": "date-time"}}},
        "ToastResponse": {"type": "object", "properties": {"toast": {"$ref": "#/definitions/Toast"}}},
        "CompletionResult": {"type": "object", "properties": {
            "nivelRiesgo": {"type": "string"}, "puntajeTotal": {"type": "number"}, "pdfUrl": {"type": "string"}}},
        "SessionView": {"type": "object", "properties": {
            "id": {"type": "string"}, "survey": {"type": "object"},
            "index": {"type": "integer"}, "total": {"type": "integer"}, "answered": {"type": "integer"},
            "question": {"$ref": "#/definitions/Question"}, "answer": {},
            "required": {"type": "boolean"}, "valid": {"type": "boolean"}, "isLast": {"type": "boolean"},
            "canAdvance": {"type": "boolean"}, "canRetreat": {"type": "boolean"}, "canSubmit": {"type": "boolean"},
            "submitState": {"type": "string", "enum": ["idle", "submitting", "done", "failed"]},
            "result": {"$ref": "#/definitions/CompletionResult"}, "lastError": {"type": "string"},
            "toast": {"$ref": "#/definitions/Toast"}}},
        "SubmitOutcome": {"type": "object", "properties": {
            "result": {"$ref": "#/definitions/CompletionResult"}, "documentUrl": {"type": "string"},
            "toast": {"$ref": "#/definitions/Toast"}, "redirectPath": {"type": "string"}, "redirectInMs": {"type": "integer"}}},
        "ExitResponse": {"type": "object", "properties": {
            "status": {"type": "string"}, "redirectPath": {"type": "string"}}},
        "AnswerEntry": {"type": "object", "properties": {"order": {"type": "integer"}, "value": {}}},
        "SaveDraftRequest": {"type": "object", "properties": {
            "answers": {"type": "array", "items": {"$ref": "#/definitions/AnswerEntry"}}}},
        "Draft": {"type": "object", "properties": {
            "surveyId": {"type": "string"}, "timestamp": {"type": "string", "format": "date-time"},
            "version": {"type": "string"}, "answers": {"type": "array", "items": {"$ref": "#/definitions/AnswerEntry"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SafeHaven Survey Gateway",
	Description:      "Survey-taking workflow for the SafeHaven front end: load, answer, navigate, submit.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Handler serves the registered document at /swagger/doc.json
func Handler(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
