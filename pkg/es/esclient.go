package es

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
)

type Config struct {
	URL      string
	Username string
	Password string

	// Transport overrides the HTTP transport; nil uses the client default.
	Transport http.RoundTripper
}

// NewClient builds a client and checks the cluster answers Info.
func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	l := slog.Default().With("component", "elasticsearch", "url", cfg.URL)
	l.Info("connecting to elasticsearch")

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("elasticsearch_info_error", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("elasticsearch error: %s", res.Status())
	}

	l.Info("connected to elasticsearch")
	return client, nil
}
