// Package storetest holds behaviour checks shared by every store.Store backend.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
)

// SearchProducts is a catalog with mixed-case ASCII and non-ASCII text.
var SearchProducts = []models.Product{
	{Name: "Écran", Price: 199, Description: "Moniteur 24 pouces"},
	{Name: "ÜBERGROSS Monitor", Price: 349, Description: "Breitbild"},
	{Name: "Laptop", Price: 999.99, Description: "Fits the ÉCRAN bag"},
	{Name: "Straße Map", Price: 9.5, Description: "Paper"},
}

// SearchCases are queries whose expected hits are derived from store.MatchesProduct.
var SearchCases = []string{"écran", "ÉCRAN", "Écr", "übergross", "Übergroß", "MONITEUR", "straße", "STRASSE", "lap", ""}

// RunSearch inserts SearchProducts into an empty s and checks that
// FindProducts agrees with store.MatchesProduct for every case.
func RunSearch(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.InsertProducts(ctx, SearchProducts))

	for _, search := range SearchCases {
		t.Run("search="+search, func(t *testing.T) {
			want := []string{}
			for _, p := range SearchProducts {
				if store.MatchesProduct(p, search) {
					want = append(want, p.Name)
				}
			}

			items, err := s.FindProducts(ctx, store.ProductFilter{Search: search})
			require.NoError(t, err)
			got := make([]string, 0, len(items))
			for _, p := range items {
				got = append(got, p.Name)
			}
			assert.Equal(t, want, got)
		})
	}
}
