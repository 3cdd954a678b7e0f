package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Pulse API",
        "description": "Publisher analytics: KPIs, page rankings, drill-downs and recommended actions.",
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
        {"name": "Authentication", "description": "Signup, login and current user"},
        {"name": "Sites", "description": "Sites owned by the current user"},
        {"name": "Connections", "description": "GA4 and AdSense data sources"},
        {"name": "Home", "description": "Headline KPIs"},
        {"name": "Pages", "description": "Ranked pages, exports and drill-downs"},
        {"name": "Actions", "description": "Recommended actions"},
        {"name": "Dev", "description": "Synthetic data tooling"},
        {"name": "Health", "description": "Liveness and connectivity"}
    ],
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuthCredentials"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuthCredentials"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sites": {
            "get": {
                "tags": ["Sites"],
                "summary": "List sites",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sites"],
                "summary": "Create site",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSiteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid or duplicate domain", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sites/{id}": {
            "get": {
                "tags": ["Sites"],
                "summary": "Get site",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sites"],
                "summary": "Delete a site and its data",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/connections/ga4/properties": {
            "get": {
                "tags": ["Connections"],
                "summary": "Available GA4 properties",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/connections/adsense/accounts": {
            "get": {
                "tags": ["Connections"],
                "summary": "Available AdSense accounts",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/connections": {
            "get": {
                "tags": ["Connections"],
                "summary": "List connections for a site",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "site_id", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Connections"],
                "summary": "Connect a data source",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertConnectionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/connections/{id}": {
            "delete": {
                "tags": ["Connections"],
                "summary": "Remove a connection",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Access denied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/home/kpis": {
            "get": {
                "tags": ["Home"],
                "summary": "Headline KPIs for a site",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "site_id", "in": "query", "required": true, "type": "string"},
                    {"name": "range", "in": "query", "type": "integer", "enum": [7, 30, 90]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/pages/top": {
            "get": {
                "tags": ["Pages"],
                "summary": "Ranked page table",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "site_id", "in": "query", "required": true, "type": "string"},
                    {"name": "range", "in": "query", "type": "integer", "enum": [7, 30, 90]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["revenue", "rpm", "pageviews"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid range or sort", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/pages/top/export": {
            "get": {
                "tags": ["Pages"],
                "summary": "Download the ranked page table",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "site_id", "in": "query", "required": true, "type": "string"},
                    {"name": "range", "in": "query", "type": "integer", "enum": [7, 30, 90]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/pages/detail": {
            "get": {
                "tags": ["Pages"],
                "summary": "Drill-down for one page",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "site_id", "in": "query", "required": true, "type": "string"},
                    {"name": "page_key", "in": "query", "required": true, "type": "string"},
                    {"name": "range", "in": "query", "type": "integer", "enum": [7, 30, 90]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Page not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/actions": {
            "get": {
                "tags": ["Actions"],
                "summary": "Recommended actions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "site_id", "in": "query", "required": true, "type": "string"},
                    {"name": "range", "in": "query", "type": "integer", "enum": [7, 30, 90]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dev/sync-dummy": {
            "post": {
                "tags": ["Dev"],
                "summary": "Regenerate synthetic facts for a site",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SyncDummyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Dev endpoints disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Sync in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dev/sync-jobs/{id}": {
            "get": {
                "tags": ["Dev"],
                "summary": "Sync job status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/db": {
            "get": {
                "tags": ["Health"],
                "summary": "SQL store connectivity",
                "responses": {"200": {"description": "Connected"}, "503": {"description": "Unavailable"}}
            }
        },
        "/health/metrics": {
            "get": {
                "tags": ["Health"],
                "summary": "Process metrics snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "AuthCredentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "CreateSiteRequest": {
            "type": "object",
            "required": ["name", "domain"],
            "properties": {
                "name": {"type": "string"},
                "domain": {"type": "string"},
                "currency": {"type": "string"}
            }
        },
        "UpsertConnectionRequest": {
            "type": "object",
            "required": ["site_id", "provider"],
            "properties": {
                "site_id": {"type": "string"},
                "provider": {"type": "string", "enum": ["ga4", "adsense"]},
                "property_id": {"type": "string"},
                "property_name": {"type": "string"}
            }
        },
        "SyncDummyRequest": {
            "type": "object",
            "required": ["site_id"],
            "properties": {
                "site_id": {"type": "string"},
                "days": {"type": "integer"},
                "page_count": {"type": "integer"},
                "async": {"type": "boolean"}
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
