package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Dubbing Planner API",
    "description": "Dubbing script speaker classification, segment analytics and recording schedule planning",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/api/scripts": {"post": {"tags": ["scripts"], "summary": "Parse a dubbing script"}},
    "/api/runs/latest": {"get": {"tags": ["runs"], "summary": "Latest run"}},
    "/api/runs/{id}": {"get": {"tags": ["runs"], "summary": "Run details"}},
    "/api/runs/{id}/lines": {"get": {"tags": ["runs"], "summary": "Classified lines of a run"}},
    "/api/runs/{id}/segments": {"get": {"tags": ["runs"], "summary": "Segments of a run"}},
    "/api/runs/{id}/schedule": {
      "get": {"tags": ["runs"], "summary": "Stored schedule of a run"},
      "post": {"tags": ["schedule"], "summary": "Schedule a parsed run"}
    },
    "/api/schedule": {"post": {"tags": ["schedule"], "summary": "Schedule inline segments"}},
    "/api/calendar": {"post": {"tags": ["schedule"], "summary": "Availability calendar"}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
