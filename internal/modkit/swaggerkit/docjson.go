package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"rektwatch/internal/platform/config"

	docs "rektwatch/internal/services/api/docs"
)

// SpecMutator adjusts the decoded document before it is served
type SpecMutator func(map[string]any)

var mutators []SpecMutator

// docReader is swapped in tests
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// Register adds m to every served document
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

type object = map[string]any

// serveDocJSON decodes the registered document, fills in the shared error
// responses and applies the mutators
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec object
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		pinOAS3(spec, "/api/v1")
		if suffix := config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""); suffix != "" {
			if info, ok := spec["info"].(object); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + suffix
				}
			}
		}

		child(child(spec, "components"), "schemas")["ErrorResponse"] = errorSchema
		eachOperation(spec, func(op object) {
			resps := child(op, "responses")
			for code, r := range defaultResponses {
				if _, ok := resps[code]; !ok {
					resps[code] = r
				}
			}
		})

		for _, m := range mutators {
			m(spec)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// pinOAS3 forces 3.0.3 (the bundled UI does not render 3.1) and a servers
// entry carrying the API base path
func pinOAS3(spec object, base string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); v == "" || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{object{"url": base}}
	}
}

// child returns m[key] as an object, creating it when absent
func child(m object, key string) object {
	c, ok := m[key].(object)
	if !ok {
		c = object{}
		m[key] = c
	}
	return c
}

func eachOperation(spec object, fn func(op object)) {
	paths, _ := spec["paths"].(object)
	for _, p := range paths {
		node, _ := p.(object)
		for _, o := range node {
			if op, ok := o.(object); ok {
				fn(op)
			}
		}
	}
}

var errorSchema = object{
	"type":        "object",
	"description": "Error envelope",
	"properties": object{
		"status_code": object{"type": "integer", "format": "int32"},
		"status":      object{"type": "string"},
		"code":        object{"type": "integer", "format": "int32"},
		"error":       object{"type": "string"},
		"request_id":  object{"type": "string"},
	},
	"required": []any{"status_code", "status"},
}

func errorResponse(desc string, example object) object {
	return object{
		"description": desc,
		"content": object{
			"application/json": object{
				"schema":  object{"$ref": "#/components/schemas/ErrorResponse"},
				"example": example,
			},
		},
	}
}

// defaultResponses are added to operations that do not declare them
var defaultResponses = map[string]object{
	"500": errorResponse("Internal Server Error", object{
		"status_code": 500,
		"status":      "Internal Server Error",
		"code":        9,
		"error":       "storage query failed",
		"request_id":  "rektwatch/abc-000001",
	}),
}
