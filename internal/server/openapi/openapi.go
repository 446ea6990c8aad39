// Package openapi builds the OpenAPI 3 document served at /api-docs.
package openapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var ErrUnsupportedMethod = errors.New("unsupported method")

type Document struct {
	OpenAPI    string               `json:"openapi"`
	Info       Info                 `json:"info"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type Components struct {
	Schemas         map[string]Schema         `json:"schemas,omitempty"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty"`
}

// SecurityScheme covers the two shapes the API accepts: an http bearer
// scheme and an apiKey carried in a cookie.
type SecurityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty"`
	Name         string `json:"name,omitempty"`
	In           string `json:"in,omitempty"`
	Description  string `json:"description,omitempty"`
}

type Schema struct {
	Ref        string            `json:"$ref,omitempty"`
	Type       string            `json:"type,omitempty"`
	Format     string            `json:"format,omitempty"`
	Properties map[string]Schema `json:"properties,omitempty"`
	Items      *Schema           `json:"items,omitempty"`
	Required   []string          `json:"required,omitempty"`
}

type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
}

type Operation struct {
	Summary     string                `json:"summary,omitempty"`
	OperationID string                `json:"operationId,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"`
	RequestBody *RequestBody          `json:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses"`
	Security    []map[string][]string `json:"security,omitempty"`
}

type Parameter struct {
	Name     string  `json:"name"`
	In       string  `json:"in"`
	Required bool    `json:"required,omitempty"`
	Schema   *Schema `json:"schema,omitempty"`
}

type RequestBody struct {
	Required bool                 `json:"required,omitempty"`
	Content  map[string]MediaType `json:"content"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// Builder accumulates routes, schemas and security schemes into a Document.
type Builder struct {
	doc Document
}

func New(info Info) *Builder {
	return &Builder{
		doc: Document{
			OpenAPI: "3.0.3",
			Info:    info,
			Paths:   map[string]*PathItem{},
		},
	}
}

func (b *Builder) Document() *Document {
	return &b.doc
}

// AddRoute registers op under method and path. Paths use OpenAPI templates
// ("/posts/{id}"), not router syntax.
func (b *Builder) AddRoute(method, path string, op Operation) error {
	item := b.doc.Paths[path]
	if item == nil {
		item = &PathItem{}
	}

	switch strings.ToUpper(method) {
	case http.MethodGet:
		item.Get = &op
	case http.MethodPost:
		item.Post = &op
	case http.MethodPut:
		item.Put = &op
	case http.MethodDelete:
		item.Delete = &op
	default:
		return ErrUnsupportedMethod
	}

	b.doc.Paths[path] = item
	return nil
}

func (b *Builder) AddSchema(name string, schema Schema) {
	b.components().Schemas[name] = schema
}

func (b *Builder) AddSecurityScheme(name string, scheme SecurityScheme) {
	b.components().SecuritySchemes[name] = scheme
}

func (b *Builder) components() *Components {
	if b.doc.Components == nil {
		b.doc.Components = &Components{
			Schemas:         map[string]Schema{},
			SecuritySchemes: map[string]SecurityScheme{},
		}
	}
	return b.doc.Components
}

// Handler serves the document as JSON.
func (b *Builder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(&b.doc)
	})
}
