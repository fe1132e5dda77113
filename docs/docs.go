// Package docs registers the Swagger specification served at /swagger.
// Regenerate with: swag init -g cmd/app/main.go
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
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/metrics": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["system"],
                "summary": "Prometheus metrics",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/members": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "List members",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Register a member",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/members/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Search members",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/members/status-summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Member counts by status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/members/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Get a member",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Update a member",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Deactivate a member",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/members/{id}/physical-profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Get physical profile",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Upsert physical profile",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/members/{id}/check-in": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["attendance"],
                "summary": "Admit a member",
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}, "409": {"description": "Admission denied"}}
            }
        },
        "/members/{id}/check-out": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["attendance"],
                "summary": "Check a member out",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/attendance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["attendance"],
                "summary": "List attendance for a day",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/subscriptions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Issue a subscription",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/subscriptions/payments-due": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Subscriptions with outstanding payment",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/subscriptions/renewals-due": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Subscriptions approaching their end date",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/subscriptions/expiring-soon": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Subscriptions near expiry or out of sessions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/subscriptions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Get a subscription",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/subscriptions/{id}/renew": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Renew a subscription",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/subscriptions/{id}/suspend": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Suspend a subscription",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/subscriptions/{id}/reactivate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Reactivate a suspended subscription",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/subscriptions/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Cancel a subscription",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/subscriptions/{id}/payment": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Record a payment",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/subscriptions/{id}/use-session": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Debit one session",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/subscriptions/{id}/credit-session": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Credit one session back",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/subscriptions/{id}/session-logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["subscriptions"],
                "summary": "Session ledger for a subscription",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/plans": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["plans"],
                "summary": "List membership plans",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["plans"],
                "summary": "Create a membership plan",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/locations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["plans"],
                "summary": "List outdoor locations",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["analytics"],
                "summary": "Dashboard snapshot",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/analytics/counts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["analytics"],
                "summary": "Subscription counts by type and status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/cache/invalidate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["system"],
                "summary": "Flush cached dashboards and searches",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Paul's Tropical Fitness API",
	Description:      "Membership and attendance engine for Paul's Tropical Fitness.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
