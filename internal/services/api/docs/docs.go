// Package docs holds the OpenAPI document served under /api/docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
  "openapi": "3.0.3",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "paths": {
    "/stats": {
      "get": {
        "tags": ["Stats"],
        "summary": "Liquidation totals and long/short ratio",
        "operationId": "statsSummary",
        "parameters": [{"$ref": "#/components/parameters/Range"}],
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/StatsEnvelope"}}}}
        }
      }
    },
    "/timeseries": {
      "get": {
        "tags": ["Stats"],
        "summary": "Liquidation counts per bucket",
        "description": "24 hourly buckets for 24h, 7 daily for 7d, 30 daily for 30d. Empty buckets are included.",
        "operationId": "statsTimeseries",
        "parameters": [{"$ref": "#/components/parameters/Range"}],
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/TimeseriesEnvelope"}}}}
        }
      }
    },
    "/status": {
      "get": {
        "tags": ["Status"],
        "summary": "Collector status and stored message count",
        "operationId": "collectorStatus",
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/StatusEnvelope"}}}}
        }
      }
    },
    "/meta/health": {
      "get": {
        "tags": ["Meta"],
        "summary": "Health check",
        "operationId": "metaHealth",
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/meta/ready": {
      "get": {
        "tags": ["Meta"],
        "summary": "Readiness check pinging the storage backend and the live feed",
        "operationId": "metaReady",
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/meta/version": {
      "get": {
        "tags": ["Meta"],
        "summary": "Build and version info",
        "operationId": "metaVersion",
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/meta/service": {
      "get": {
        "tags": ["Meta"],
        "summary": "Service info, uptime and in-process collector state",
        "operationId": "metaService",
        "responses": {"200": {"description": "ok"}}
      }
    }
  },
  "components": {
    "parameters": {
      "Range": {
        "name": "range",
        "in": "query",
        "required": false,
        "description": "Window. Unknown values fall back to 24h.",
        "schema": {"type": "string", "enum": ["24h", "7d", "30d"], "default": "24h"}
      }
    },
    "schemas": {
      "StatsSummary": {
        "type": "object",
        "properties": {
          "totalLong": {"type": "integer", "example": 12},
          "totalShort": {"type": "integer", "example": 8},
          "ratio": {"type": "number", "example": 1.5},
          "totalLongUSD": {"type": "number", "example": 4250000},
          "totalShortUSD": {"type": "number", "example": 1980000}
        }
      },
      "TimeBucket": {
        "type": "object",
        "properties": {
          "timestamp": {"type": "string", "format": "date-time"},
          "longCount": {"type": "integer", "example": 3},
          "shortCount": {"type": "integer", "example": 1}
        }
      },
      "Status": {
        "type": "object",
        "properties": {
          "status": {"type": "string", "enum": ["live", "connecting"]},
          "messageCount": {"type": "integer", "example": 42}
        }
      },
      "StatsEnvelope": {
        "type": "object",
        "properties": {
          "status_code": {"type": "integer"},
          "status": {"type": "string"},
          "request_id": {"type": "string"},
          "data": {"$ref": "#/components/schemas/StatsSummary"}
        }
      },
      "TimeseriesEnvelope": {
        "type": "object",
        "properties": {
          "status_code": {"type": "integer"},
          "status": {"type": "string"},
          "request_id": {"type": "string"},
          "data": {"type": "array", "items": {"$ref": "#/components/schemas/TimeBucket"}}
        }
      },
      "StatusEnvelope": {
        "type": "object",
        "properties": {
          "status_code": {"type": "integer"},
          "status": {"type": "string"},
          "request_id": {"type": "string"},
          "data": {"$ref": "#/components/schemas/Status"}
        }
      }
    }
  }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "rektwatch API",
	Description:      "Long and short liquidation stats collected from a Nostr bot.",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
