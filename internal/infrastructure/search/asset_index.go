package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

// AssetIndex keeps a searchable copy of assets. A nil client disables it:
// writes are skipped and searches return no hits.
type AssetIndex struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

func NewAssetIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *AssetIndex {
	return &AssetIndex{es: es, index: index, logger: logger}
}

func (x *AssetIndex) enabled() bool { return x != nil && x.es != nil && x.index != "" }

// Document is the indexed projection of an asset.
func Document(a *entity.Asset) map[string]any {
	doc := map[string]any{
		"id":     a.ID,
		"org_id": a.OrgID,
		"name":   a.Name,
		"status": string(a.Status),
	}
	if a.Location != nil {
		doc["location"] = *a.Location
	}
	if a.Type != nil {
		doc["type"] = *a.Type
	}
	if a.SerialNumber != nil {
		doc["serial_number"] = *a.SerialNumber
	}
	return doc
}

func (x *AssetIndex) Index(ctx context.Context, a *entity.Asset) error {
	if !x.enabled() {
		return nil
	}
	b, err := json.Marshal(Document(a))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: a.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", a.ID, res.Status())
	}
	return nil
}

func (x *AssetIndex) Remove(ctx context.Context, id string) error {
	if !x.enabled() {
		return nil
	}
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Query builds the tenant-filtered search body.
func Query(orgID, q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"name^3", "serial_number^2", "location", "type"},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"org_id": orgID}},
				},
			},
		},
		"size": size,
	}
}

func (x *AssetIndex) Search(ctx context.Context, orgID, q string, size int) ([]map[string]any, error) {
	if !x.enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	b, _ := json.Marshal(Query(orgID, q, size))

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		// the filter already scopes hits; double check in case of a stale mapping
		if h.Source["org_id"] != orgID {
			continue
		}
		out = append(out, h.Source)
	}
	return out, nil
}
