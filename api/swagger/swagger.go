package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CourtHive Scheduling API",
        "description": "Tournament matchUp scheduling engine and host API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Operator accounts"},
        {"name": "Scheduling", "description": "Scheduling runs, annotation, grid mode"},
        {"name": "Profiles", "description": "Per-date scheduling profiles"},
        {"name": "Resources", "description": "Venue and matchUp read surfaces"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate operator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduling/run": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Run the scheduler for a date",
                "parameters": [
                    {"name": "async", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RunScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Run audit", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Run queued"},
                    "422": {"description": "Structural error (NO_VENUES, EMPTY_PROFILE, MISSING_DEPENDENCIES)"}
                }
            }
        },
        "/scheduling/runs/{id}": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Get a run audit",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/scheduling/runs/{id}/export": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Export a run audit",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Document"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/scheduling/annotate": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Annotate an arranged schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnnotateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduling/grid": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Run the grid scheduler for a draw",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GridScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduling/profiles": {
            "get": {
                "tags": ["Profiles"],
                "summary": "List scheduling profiles",
                "parameters": [
                    {"name": "tournament_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Profiles"],
                "summary": "Create or replace a scheduling profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Empty profile"}
                }
            }
        },
        "/scheduling/profiles/{date}": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Get a scheduling profile",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "tournament_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Profiles"],
                "summary": "Delete a scheduling profile",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "tournament_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/scheduling/profiles/{date}/run": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Run the scheduler for a profile date",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "async", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RunScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Run audit", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Run queued"}
                }
            }
        },
        "/venues": {
            "get": {
                "tags": ["Resources"],
                "summary": "List venues with courts",
                "parameters": [
                    {"name": "tournament_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/matchups": {
            "get": {
                "tags": ["Resources"],
                "summary": "List in-context matchUps",
                "parameters": [
                    {"name": "tournament_id", "in": "query", "required": true, "type": "string"},
                    {"name": "draw_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RunScheduleRequest": {
            "type": "object",
            "properties": {
                "tournament_id": {"type": "string"},
                "date": {"type": "string"},
                "dry_run": {"type": "boolean"},
                "policy": {"$ref": "#/definitions/TimingPolicy"},
                "daily_limits": {"$ref": "#/definitions/DailyLimits"}
            },
            "required": ["tournament_id", "date"]
        },
        "AnnotateScheduleRequest": {
            "type": "object",
            "properties": {
                "tournament_id": {"type": "string"},
                "date": {"type": "string"}
            },
            "required": ["tournament_id", "date"]
        },
        "GridScheduleRequest": {
            "type": "object",
            "properties": {
                "tournament_id": {"type": "string"},
                "draw_id": {"type": "string"},
                "court_ids": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "integer"}
            },
            "required": ["tournament_id", "draw_id", "court_ids", "rows"]
        },
        "UpsertProfileRequest": {
            "type": "object",
            "properties": {
                "tournament_id": {"type": "string"},
                "date": {"type": "string"},
                "venues": {"type": "array", "items": {"$ref": "#/definitions/VenueProfile"}}
            },
            "required": ["tournament_id", "date", "venues"]
        },
        "VenueProfile": {
            "type": "object",
            "properties": {
                "venue_id": {"type": "string"},
                "rounds": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "draw_id": {"type": "string"},
                            "structure_id": {"type": "string"},
                            "round_number": {"type": "integer"}
                        }
                    }
                }
            }
        },
        "TimingPolicy": {
            "type": "object",
            "properties": {
                "default": {"$ref": "#/definitions/MatchUpTiming"},
                "categories": {"type": "object"},
                "formats": {"type": "array", "items": {"type": "object"}}
            }
        },
        "MatchUpTiming": {
            "type": "object",
            "properties": {
                "average_minutes": {"type": "integer"},
                "recovery_minutes": {"type": "integer"},
                "type_change_recovery_minutes": {"type": "integer"}
            }
        },
        "DailyLimits": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "by_type": {"type": "object"}
            }
        },
        "SchedulingAudit": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "date": {"type": "string"},
                "scheduled_match_up_ids": {"type": "array", "items": {"type": "string"}},
                "no_time_match_up_ids": {"type": "array", "items": {"type": "string"}},
                "over_limit_match_up_ids": {"type": "array", "items": {"type": "string"}},
                "remaining_slots": {"type": "object"},
                "iterations": {"type": "integer"},
                "generated_at": {"type": "string"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
