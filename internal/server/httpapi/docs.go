package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/postgate/internal/server/openapi"
	"github.com/labstack/echo/v4"
)

const docsPath = "/api-docs"

const (
	schemeBearer  = "bearerAuth"
	schemeCookie  = "cookieAuth"
	schemeSession = "sessionAuth"
)

type docRoute struct {
	method string
	path   string
	op     openapi.Operation
}

func jsonBody(schema openapi.Schema) map[string]openapi.MediaType {
	return map[string]openapi.MediaType{echo.MIMEApplicationJSON: {Schema: &schema}}
}

func ref(name string) openapi.Schema {
	return openapi.Schema{Ref: "#/components/schemas/" + name}
}

func resp(desc string) openapi.Response {
	return openapi.Response{Description: desc, Content: jsonBody(ref("Message"))}
}

// apiDocs describes the routes registered in NewServer.
func apiDocs(sessionCookie, authCookie string) (*openapi.Builder, error) {
	b := openapi.New(openapi.Info{
		Title:       "Blog API",
		Version:     "1.0.0",
		Description: "Posts are public to read; writes need a session, an auth cookie or a bearer token.",
	})

	b.AddSecurityScheme(schemeSession, openapi.SecurityScheme{Type: "apiKey", In: "cookie", Name: sessionCookie})
	b.AddSecurityScheme(schemeCookie, openapi.SecurityScheme{Type: "apiKey", In: "cookie", Name: authCookie})
	b.AddSecurityScheme(schemeBearer, openapi.SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: "JWT"})

	b.AddSchema("Post", openapi.Schema{
		Type: "object",
		Properties: map[string]openapi.Schema{
			"_id":      {Type: "string", Format: "uuid"},
			"title":    {Type: "string"},
			"body":     {Type: "string"},
			"username": {Type: "string"},
			"date":     {Type: "string", Format: "date-time"},
		},
	})
	b.AddSchema("PostInput", openapi.Schema{
		Type:     "object",
		Required: []string{"title", "body"},
		Properties: map[string]openapi.Schema{
			"title":    {Type: "string"},
			"body":     {Type: "string"},
			"username": {Type: "string"},
		},
	})
	b.AddSchema("Credentials", openapi.Schema{
		Type:     "object",
		Required: []string{"username", "password"},
		Properties: map[string]openapi.Schema{
			"username": {Type: "string"},
			"password": {Type: "string"},
		},
	})
	b.AddSchema("Login", openapi.Schema{
		Type: "object",
		Properties: map[string]openapi.Schema{
			"token":    {Type: "string"},
			"username": {Type: "string"},
		},
	})
	b.AddSchema("Message", openapi.Schema{
		Type:       "object",
		Properties: map[string]openapi.Schema{"msg": {Type: "string"}},
	})

	secured := []map[string][]string{{schemeSession: {}}, {schemeCookie: {}}, {schemeBearer: {}}}
	idParam := []openapi.Parameter{{Name: "id", In: "path", Required: true, Schema: &openapi.Schema{Type: "string", Format: "uuid"}}}
	postInput := &openapi.RequestBody{Required: true, Content: jsonBody(ref("PostInput"))}

	routes := []docRoute{
		{http.MethodGet, apiPrefix + "/posts", openapi.Operation{
			Summary: "Returns all blog posts, newest first", OperationID: "listPosts", Tags: []string{"posts"},
			Responses: map[string]openapi.Response{
				"200": {Description: "OK", Content: jsonBody(openapi.Schema{Type: "array", Items: &openapi.Schema{Ref: "#/components/schemas/Post"}})},
				"400": resp("Bad Request"),
			},
		}},
		{http.MethodPost, apiPrefix + "/posts", openapi.Operation{
			Summary: "Create new blog post", OperationID: "createPost", Tags: []string{"posts"},
			RequestBody: postInput, Security: secured,
			Responses: map[string]openapi.Response{
				"201": {Description: "Created", Content: jsonBody(ref("Post"))},
				"400": resp("Bad Request"),
				"401": resp("Unauthorized"),
			},
		}},
		{http.MethodPut, apiPrefix + "/posts/{id}", openapi.Operation{
			Summary: "Update a post owned by the caller; returns the post before the change", OperationID: "updatePost", Tags: []string{"posts"},
			Parameters: idParam, RequestBody: postInput, Security: secured,
			Responses: map[string]openapi.Response{
				"202": {Description: "Accepted", Content: jsonBody(ref("Post"))},
				"400": resp("Bad Request"),
				"401": resp("Unauthorized"),
				"403": resp("Forbidden"),
				"404": resp("Not Found"),
			},
		}},
		{http.MethodDelete, apiPrefix + "/posts/{id}", openapi.Operation{
			Summary: "Delete a post owned by the caller", OperationID: "deletePost", Tags: []string{"posts"},
			Parameters: idParam, Security: secured,
			Responses: map[string]openapi.Response{
				"204": {Description: "No Content"},
				"401": resp("Unauthorized"),
				"403": resp("Forbidden"),
				"404": resp("Not Found"),
			},
		}},
		{http.MethodPost, apiPrefix + "/users/login", openapi.Operation{
			Summary: "Log in; sets the session and auth cookies", OperationID: "login", Tags: []string{"users"},
			RequestBody: &openapi.RequestBody{Required: true, Content: jsonBody(ref("Credentials"))},
			Responses: map[string]openapi.Response{
				"200": {Description: "OK", Content: jsonBody(ref("Login"))},
				"400": resp("Bad Request"),
				"401": resp("Unauthorized"),
				"429": resp("Too Many Requests"),
			},
		}},
		{http.MethodPost, apiPrefix + "/users/logout", openapi.Operation{
			Summary: "Log out; clears both cookies", OperationID: "logout", Tags: []string{"users"},
			Responses: map[string]openapi.Response{
				"204": {Description: "No Content"},
			},
		}},
		{http.MethodGet, healthPath, openapi.Operation{
			Summary: "Liveness and database reachability", OperationID: "health", Tags: []string{"health"},
			Responses: map[string]openapi.Response{
				"200": {Description: "OK"},
				"503": {Description: "Service Unavailable"},
			},
		}},
	}

	for _, r := range routes {
		if err := b.AddRoute(r.method, r.path, r.op); err != nil {
			return nil, err
		}
	}
	return b, nil
}
