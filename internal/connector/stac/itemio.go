package stac

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/eoforge/sathub/internal/storage"
)

// =============================================================================
// ITEM READERS
// =============================================================================

// ItemReader turns a raw search feature into an item. The default reader
// decodes the feature as-is; alternative readers may fetch the full item
// from elsewhere, e.g. an object store next to an on-premise catalog.
type ItemReader interface {
	Read(ctx context.Context, feature json.RawMessage) (*Item, error)
}

// PassthroughReader decodes search features directly.
type PassthroughReader struct{}

func (PassthroughReader) Read(ctx context.Context, feature json.RawMessage) (*Item, error) {
	var item Item
	if err := json.Unmarshal(feature, &item); err != nil {
		return nil, fmt.Errorf("stac: decode item: %w", err)
	}
	return &item, nil
}

// S3Reader resolves each search feature to the full item JSON stored in an
// object store. On-premise catalogs ingest items at
// {self-href minus "collections/" and "items/"}/{id}.json, so the reader
// derives the object key the same way.
type S3Reader struct {
	Store  storage.ObjectStore
	Bucket string
}

func (r *S3Reader) Read(ctx context.Context, feature json.RawMessage) (*Item, error) {
	var stub Item
	if err := json.Unmarshal(feature, &stub); err != nil {
		return nil, fmt.Errorf("stac: decode item: %w", err)
	}
	key, err := r.key(&stub)
	if err != nil {
		return nil, err
	}

	data, err := r.Store.GetObject(ctx, r.Bucket, key)
	if err != nil {
		return nil, fmt.Errorf("stac: read item %s from store: %w", stub.ID, err)
	}
	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("stac: decode stored item %s: %w", stub.ID, err)
	}
	return &item, nil
}

func (r *S3Reader) key(item *Item) (string, error) {
	href := item.SelfHref()
	if href == "" {
		return "", fmt.Errorf("stac: item %s has no self link", item.ID)
	}
	if u, err := url.Parse(href); err == nil && u.Path != "" {
		href = u.Path
	}
	stripped := strings.ReplaceAll(href, "collections/", "")
	stripped = strings.ReplaceAll(stripped, "items/", "")
	return storage.JoinKey(stripped, item.ID+".json"), nil
}
