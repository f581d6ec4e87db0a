package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TutorTrack API",
        "description": "Tutoring session report management engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Display-name sessions"},
        {"name": "Reports", "description": "Session report lifecycle"},
        {"name": "Exports", "description": "Report view artifacts"},
        {"name": "Enrichment", "description": "Exam photo capture and analysis"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Start a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List reports",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Reports"],
                "summary": "Submit a new report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/reports/{id}": {
            "put": {
                "tags": ["Reports"],
                "summary": "Edit an existing report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitReportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not the record owner"},
                    "404": {"description": "Unknown report"}
                }
            },
            "delete": {
                "tags": ["Reports"],
                "summary": "Delete a report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Not the record owner"}
                }
            }
        },
        "/reports/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the current report view",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Artifact stream"},
                    "204": {"description": "Empty view"}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a retained export artifact",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Artifact stream"},
                    "401": {"description": "Invalid or expired token"},
                    "404": {"description": "Artifact no longer retained"}
                }
            }
        },
        "/admin/exports/cleanup": {
            "post": {
                "tags": ["Exports"],
                "summary": "Remove expired export artifacts now",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Admin only"}
                }
            }
        },
        "/enrichment/capture": {
            "post": {
                "tags": ["Enrichment"],
                "summary": "Acquire the capture device",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Capturing"},
                    "409": {"description": "Device unavailable or workflow busy"}
                }
            }
        },
        "/enrichment/snapshot": {
            "post": {
                "tags": ["Enrichment"],
                "summary": "Freeze the current frame and release the device",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Image ready"},
                    "409": {"description": "No capture in progress"}
                }
            }
        },
        "/enrichment/cancel": {
            "post": {
                "tags": ["Enrichment"],
                "summary": "Cancel capture without retaining an image",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/enrichment/import": {
            "post": {
                "tags": ["Enrichment"],
                "summary": "Upload an exam photo instead of capturing one",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "image", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Image ready"},
                    "400": {"description": "Unsupported payload"}
                }
            }
        },
        "/enrichment/analyze": {
            "post": {
                "tags": ["Enrichment"],
                "summary": "Send the held image for analysis",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnalyzeRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted; poll status"},
                    "409": {"description": "No image or analysis already running"}
                }
            }
        },
        "/enrichment/discard": {
            "post": {
                "tags": ["Enrichment"],
                "summary": "Drop the held image and reset the workflow",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/enrichment/status": {
            "get": {
                "tags": ["Enrichment"],
                "summary": "Report the workflow state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EnrichmentStatus"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"}
            }
        },
        "SubmitReportRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string"},
                "category": {"type": "string", "enum": ["輔導", "補課"]},
                "studentName": {"type": "string"},
                "subject": {"type": "string", "enum": ["英文", "數學", "國文", "自然", "社會"]},
                "topics": {"type": "array", "items": {"type": "string"}},
                "details": {"type": "string"}
            }
        },
        "AnalyzeRequest": {
            "type": "object",
            "properties": {
                "details": {"type": "string"}
            }
        },
        "EnrichmentStatus": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["IDLE", "CAPTURING", "IMAGE_READY", "ANALYZING"]},
                "has_image": {"type": "boolean"},
                "details": {"type": "string"},
                "last_error": {"type": "string"},
                "completed": {"type": "boolean"},
                "generation": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
