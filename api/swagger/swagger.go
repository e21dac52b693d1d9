package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Room Booking API",
        "description": "Room scheduling and conflict-free booking engine",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Scheduler", "description": "First-fit schedule suggestions"},
        {"name": "Bookings", "description": "Conflict-checked booking commits"},
        {"name": "Rooms", "description": "Read-only room directory"}
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
        "/api/v1/scheduler/suggest": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Suggest a schedule",
                "description": "Propose one conflict-free placement per course using first-fit. Nothing is persisted; commit the rows via the bookings endpoints.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SuggestScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Suggestions", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid parameters"},
                    "422": {"description": "Unknown course or no rooms available"}
                }
            }
        },
        "/api/v1/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings",
                "parameters": [
                    {"name": "roomId", "in": "query", "type": "integer"},
                    {"name": "courseId", "in": "query", "type": "integer"},
                    {"name": "termId", "in": "query", "type": "integer"},
                    {"name": "dayOfWeek", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Bookings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Bookings"],
                "summary": "Create booking",
                "description": "Commit a single booking. The slot is re-checked against committed state inside a locked transaction.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookingRow"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot conflict"},
                    "422": {"description": "Unknown reference"}
                }
            }
        },
        "/api/v1/bookings/bulk": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Commit bookings in bulk",
                "description": "Rows succeed or fail independently; the response reports per-row outcomes.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommitBookingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-row results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/bookings/check": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Check room availability",
                "description": "Advisory availability check for explicit times or a named fixed slot.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "Verdict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/bookings/{id}": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Get booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Booking", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Bookings"],
                "summary": "Update booking",
                "description": "Move or edit a booking. The new slot is re-checked excluding the booking's own row.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBookingRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "409": {"description": "Slot conflict"}
                }
            },
            "delete": {
                "tags": ["Bookings"],
                "summary": "Delete booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms",
                "parameters": [
                    {"name": "buildingId", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Rooms", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rooms/{id}": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Get room",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Room", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "SuggestScheduleRequest": {
            "type": "object",
            "required": ["courseIds", "workStart", "workEnd"],
            "properties": {
                "courseIds": {"type": "array", "items": {"type": "integer"}},
                "dayStart": {"type": "integer", "minimum": 0, "maximum": 6},
                "dayEnd": {"type": "integer", "minimum": 0, "maximum": 6},
                "workStart": {"type": "string", "example": "07:00"},
                "workEnd": {"type": "string", "example": "17:00"},
                "slotMinutes": {"type": "integer"},
                "roomIds": {"type": "array", "items": {"type": "integer"}},
                "termId": {"type": "integer"},
                "sectionId": {"type": "integer"},
                "groupId": {"type": "integer"}
            }
        },
        "BookingRow": {
            "type": "object",
            "required": ["courseId", "roomId", "startTime", "endTime"],
            "properties": {
                "courseId": {"type": "integer"},
                "roomId": {"type": "integer"},
                "dayOfWeek": {"type": "integer", "minimum": 0, "maximum": 6},
                "startTime": {"type": "string", "example": "08:00"},
                "endTime": {"type": "string", "example": "09:30"},
                "durationMinutes": {"type": "integer"},
                "termId": {"type": "integer"},
                "sectionId": {"type": "integer"},
                "groupId": {"type": "integer"}
            }
        },
        "CommitBookingsRequest": {
            "type": "object",
            "required": ["rows"],
            "properties": {
                "rows": {"type": "array", "items": {"$ref": "#/definitions/BookingRow"}}
            }
        },
        "UpdateBookingRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "integer"},
                "roomId": {"type": "integer"},
                "dayOfWeek": {"type": "integer"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "termId": {"type": "integer"},
                "sectionId": {"type": "integer"},
                "groupId": {"type": "integer"}
            }
        },
        "CheckAvailabilityRequest": {
            "type": "object",
            "required": ["roomId"],
            "properties": {
                "roomId": {"type": "integer"},
                "dayIndex": {"type": "integer", "minimum": 0, "maximum": 6},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "timeSlotId": {"type": "integer"},
                "excludeBookingId": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
