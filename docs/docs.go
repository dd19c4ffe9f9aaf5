// Package docs provides the OpenAPI document served by the swagger UI.
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
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/areas": {
            "get": {
                "produces": ["application/json"],
                "tags": ["areas"],
                "summary": "List areas",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["areas"],
                "summary": "Create area",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/areas/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["areas"],
                "summary": "Areas live status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["summary"],
                "summary": "Usage summary",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/alerts/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Alert statistics",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["config"],
                "summary": "Get settings",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["config"],
                "summary": "Update settings",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/system/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Get system stats",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/system/cleanup": {
            "post": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Run retention cleanup",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8600",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Aforo Worker API",
	Description:      "Area occupancy counting worker driven by Frigate zone events over MQTT",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
