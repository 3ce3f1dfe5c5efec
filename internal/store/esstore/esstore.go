// Package esstore implements store.Store on Elasticsearch, one index per
// record type.
package esstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/store"
)

// maxResults caps list/search responses at the default index.max_result_window.
const maxResults = 10000

var userIDSpace = uuid.MustParse("6f1c7c1e-3a53-4a43-9d0e-5b8f0f6a8c11")

type Repo struct {
	ES            *elasticsearch.Client
	UsersIndex    string
	ProductsIndex string
	Now           func() time.Time
}

var _ store.Store = (*Repo)(nil)

type userDoc struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	Role         string `json:"role"`
}

type productDoc struct {
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// New returns a repo over the "<prefix>-users" and "<prefix>-products"
// indices, creating them with explicit mappings when missing.
func New(ctx context.Context, client *elasticsearch.Client, prefix string) (*Repo, error) {
	r := &Repo{
		ES:            client,
		UsersIndex:    prefix + "-users",
		ProductsIndex: prefix + "-products",
		Now:           time.Now,
	}
	if err := r.EnsureIndices(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

const usersMapping = `{
  "mappings": {
    "properties": {
      "username": {"type": "keyword"},
      "password": {"type": "keyword", "index": false},
      "role":     {"type": "keyword"}
    }
  }
}`

const productsMapping = `{
  "mappings": {
    "properties": {
      "name":        {"type": "text", "fields": {"raw": {"type": "wildcard"}}},
      "description": {"type": "text", "fields": {"raw": {"type": "wildcard"}}},
      "price":       {"type": "double"},
      "created_at":  {"type": "date"}
    }
  }
}`

func (r *Repo) EnsureIndices(ctx context.Context) error {
	if err := r.ensureIndex(ctx, r.UsersIndex, usersMapping); err != nil {
		return err
	}
	return r.ensureIndex(ctx, r.ProductsIndex, productsMapping)
}

func (r *Repo) ensureIndex(ctx context.Context, name, mapping string) error {
	res, err := r.ES.Indices.Exists([]string{name}, r.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists %s: %w", name, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("index exists %s: %s", name, res.Status())
	}

	res, err = r.ES.Indices.Create(name,
		r.ES.Indices.Create.WithContext(ctx),
		r.ES.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		// another instance may have won the race
		if bytes.Contains(body, []byte("resource_already_exists_exception")) {
			return nil
		}
		return fmt.Errorf("create index %s: %s: %s", name, res.Status(), body)
	}
	return nil
}

type searchHit[T any] struct {
	ID     string `json:"_id"`
	Source T      `json:"_source"`
}

type searchResponse[T any] struct {
	Hits struct {
		Hits []searchHit[T] `json:"hits"`
	} `json:"hits"`
}

func decodeError(res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("elasticsearch %s: %s", res.Status(), strings.TrimSpace(string(body)))
}

func (r *Repo) search(ctx context.Context, index string, body map[string]any, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("encode search: %w", err)
	}

	res, err := r.ES.Search(
		r.ES.Search.WithContext(ctx),
		r.ES.Search.WithIndex(index),
		r.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return decodeError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode search: %w", err)
	}
	return nil
}

func (r *Repo) count(ctx context.Context, index string) (int64, error) {
	res, err := r.ES.Count(
		r.ES.Count.WithContext(ctx),
		r.ES.Count.WithIndex(index),
	)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, decodeError(res)
	}
	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return out.Count, nil
}

func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	body := map[string]any{
		"size":  1,
		"query": map[string]any{"term": map[string]any{"username": username}},
	}
	var resp searchResponse[userDoc]
	if err := r.search(ctx, r.UsersIndex, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Hits.Hits) == 0 {
		return nil, store.ErrNotFound
	}
	hit := resp.Hits.Hits[0]
	return &models.User{
		ID:           hit.ID,
		Username:     hit.Source.Username,
		PasswordHash: hit.Source.PasswordHash,
		Role:         models.Role(hit.Source.Role),
	}, nil
}

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, r.UsersIndex)
}

// UserID derives the document id from the username so that the create
// operation enforces uniqueness.
func UserID(username string) string {
	return uuid.NewSHA1(userIDSpace, []byte(username)).String()
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

func (r *Repo) bulk(ctx context.Context, buf *bytes.Buffer) (*bulkResponse, error) {
	res, err := r.ES.Bulk(buf,
		r.ES.Bulk.WithContext(ctx),
		r.ES.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return nil, fmt.Errorf("bulk: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(res)
	}
	var out bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode bulk: %w", err)
	}
	return &out, nil
}

func writeBulkLine(buf *bytes.Buffer, op, index, id string, doc any) error {
	meta := map[string]map[string]string{op: {"_index": index, "_id": id}}
	enc := json.NewEncoder(buf)
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return enc.Encode(doc)
}

func (r *Repo) InsertUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, u := range users {
		doc := userDoc{Username: u.Username, PasswordHash: u.PasswordHash, Role: string(u.Role)}
		if err := writeBulkLine(&buf, "create", r.UsersIndex, UserID(u.Username), doc); err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
	}

	out, err := r.bulk(ctx, &buf)
	if err != nil {
		return err
	}
	if !out.Errors {
		return nil
	}
	for _, item := range out.Items {
		for _, result := range item {
			if result.Status == http.StatusConflict {
				return store.ErrDuplicateUsername
			}
			if result.Error != nil {
				return fmt.Errorf("insert user: %s: %s", result.Error.Type, result.Error.Reason)
			}
		}
	}
	return errors.New("insert users: bulk reported errors")
}

func (r *Repo) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, r.ProductsIndex)
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func productQuery(search string) map[string]any {
	if search == "" {
		return map[string]any{"match_all": map[string]any{}}
	}
	pattern := "*" + wildcardEscaper.Replace(search) + "*"
	clause := func(field string) map[string]any {
		return map[string]any{"wildcard": map[string]any{
			field: map[string]any{"value": pattern, "case_insensitive": true},
		}}
	}
	return map[string]any{"bool": map[string]any{
		"should":               []any{clause("name.raw"), clause("description.raw")},
		"minimum_should_match": 1,
	}}
}

func (r *Repo) FindProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	body := map[string]any{
		"size":  maxResults,
		"query": productQuery(filter.Search),
		"sort":  []any{map[string]any{"created_at": map[string]any{"order": "asc", "unmapped_type": "date"}}},
	}
	var resp searchResponse[productDoc]
	if err := r.search(ctx, r.ProductsIndex, body, &resp); err != nil {
		return nil, err
	}
	items := make([]models.Product, len(resp.Hits.Hits))
	for i, hit := range resp.Hits.Hits {
		items[i] = models.Product{
			ID:          hit.ID,
			Name:        hit.Source.Name,
			Price:       hit.Source.Price,
			Description: hit.Source.Description,
		}
	}
	return items, nil
}

func (r *Repo) newProductDoc(p models.Product) productDoc {
	return productDoc{Name: p.Name, Price: p.Price, Description: p.Description, CreatedAt: r.Now().UTC()}
}

func (r *Repo) InsertProduct(ctx context.Context, product *models.Product) error {
	id := uuid.NewString()
	raw, err := json.Marshal(r.newProductDoc(*product))
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	res, err := r.ES.Index(r.ProductsIndex, bytes.NewReader(raw),
		r.ES.Index.WithContext(ctx),
		r.ES.Index.WithDocumentID(id),
		r.ES.Index.WithOpType("create"),
		r.ES.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return decodeError(res)
	}
	product.ID = id
	return nil
}

func (r *Repo) InsertProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	base := r.Now().UTC()
	var buf bytes.Buffer
	for i, p := range products {
		ids[i] = uuid.NewString()
		doc := r.newProductDoc(p)
		// keep batch order under the created_at sort
		doc.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		if err := writeBulkLine(&buf, "create", r.ProductsIndex, ids[i], doc); err != nil {
			return fmt.Errorf("encode product: %w", err)
		}
	}
	out, err := r.bulk(ctx, &buf)
	if err != nil {
		return err
	}
	if out.Errors {
		return errors.New("insert products: bulk reported errors")
	}
	for i := range products {
		products[i].ID = ids[i]
	}
	return nil
}

func (r *Repo) Ping(ctx context.Context) error {
	res, err := r.ES.Ping(r.ES.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

func (r *Repo) Close() error { return nil }
