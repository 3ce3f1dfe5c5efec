package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
	"github.com/Skotchmaster/catalog/internal/transport"
	"github.com/Skotchmaster/catalog/pkg/logging"
	"github.com/Skotchmaster/catalog/pkg/mykafka"
)

const (
	ReasonNameAndPriceRequired = "Name and price are required"
	ReasonInvalidPrice         = "Price must be a non-negative number"
)

type CatalogService struct {
	Repo   store.Store
	Events mykafka.Publisher
}

func NewCatalogService(repo store.Store, events mykafka.Publisher) *CatalogService {
	if events == nil {
		events = mykafka.Nop{}
	}
	return &CatalogService{Repo: repo, Events: events}
}

func (s *CatalogService) ListProducts(ctx context.Context, search string) ([]models.Product, error) {
	// Surrounding whitespace is dropped, so a blank search lists everything
	// instead of matching a literal space.
	items, err := s.Repo.FindProducts(ctx, store.ProductFilter{Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

// CreateProduct validates and stores one product. There is no idempotency
// key: repeating a request stores another product.
func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price == nil {
		return nil, invalid(ReasonNameAndPriceRequired)
	}
	price := *req.Price
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, invalid(ReasonInvalidPrice)
	}

	prod := models.Product{Name: name, Price: price}
	if req.Description != nil {
		prod.Description = *req.Description
	}

	if err := s.Repo.InsertProduct(ctx, &prod); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	event := map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicProductEvents, prod.ID, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "topic", mykafka.TopicProductEvents, "type", "product_created", "error", err)
	}

	return &prod, nil
}
