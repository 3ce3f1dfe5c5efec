// Package estest provides a scripted http.RoundTripper for exercising code
// that talks to Elasticsearch without a cluster.
package estest

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type Response struct {
	Status int
	Body   string
}

// Route answers requests whose path matches. Method is ignored when empty.
type Route struct {
	Method string
	Path   string
	Prefix bool
	Reply  func(r Request) Response
}

type Transport struct {
	mu       sync.Mutex
	routes   []Route
	requests []Request
}

func New(routes ...Route) *Transport {
	return &Transport{routes: routes}
}

func (t *Transport) Handle(r Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, r)
}

func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Request, len(t.requests))
	copy(out, t.requests)
	return out
}

// Last returns the most recent request whose path contains substr.
func (t *Transport) Last(substr string) (Request, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.requests) - 1; i >= 0; i-- {
		if strings.Contains(t.requests[i].Path, substr) {
			return t.requests[i], true
		}
	}
	return Request{}, false
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
	}
	r := Request{Method: req.Method, Path: req.URL.Path, Query: req.URL.RawQuery, Body: string(body)}

	t.mu.Lock()
	t.requests = append(t.requests, r)
	routes := make([]Route, len(t.routes))
	copy(routes, t.routes)
	t.mu.Unlock()

	resp := Response{Status: http.StatusNotFound, Body: `{"error":"no route"}`}
	for _, rt := range routes {
		if rt.Method != "" && rt.Method != req.Method {
			continue
		}
		if rt.Path == r.Path || (rt.Prefix && strings.HasPrefix(r.Path, rt.Path)) {
			resp = rt.Reply(r)
			break
		}
	}

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: resp.Status,
		Status:     http.StatusText(resp.Status),
		Header:     h,
		Body:       io.NopCloser(bytes.NewReader([]byte(resp.Body))),
		Request:    req,
	}, nil
}

func JSON(status int, body string) func(Request) Response {
	return func(Request) Response { return Response{Status: status, Body: body} }
}

// InfoRoute answers the root endpoint the way a cluster does.
func InfoRoute() Route {
	return Route{Method: http.MethodGet, Path: "/", Reply: JSON(http.StatusOK,
		`{"name":"node-1","cluster_name":"test","version":{"number":"9.0.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)}
}
