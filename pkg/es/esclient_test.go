package es

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog/pkg/es/estest"
)

func TestNewClient_OK(t *testing.T) {
	tr := estest.New(estest.InfoRoute())

	client, err := NewClient(context.Background(), Config{URL: "http://es.test:9200", Transport: tr})
	require.NoError(t, err)
	require.NotNil(t, client)

	_, ok := tr.Last("/")
	assert.True(t, ok)
}

func TestNewClient_ClusterError(t *testing.T) {
	tr := estest.New(estest.Route{Method: http.MethodGet, Path: "/", Reply: estest.JSON(http.StatusUnauthorized, `{"error":"unauthorized"}`)})

	_, err := NewClient(context.Background(), Config{URL: "http://es.test:9200", Transport: tr})
	require.Error(t, err)
}
