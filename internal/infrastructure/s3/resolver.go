package s3infra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-dataroom-api/internal/domain"
)

// Page is one presigned rendered page of paged content.
type Page struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// Content is the variant payload returned with a successful view. ContentType
// selects which of the optional fields are populated.
type Content struct {
	ContentType string `json:"contentType"` // "paged" | "file" | "sheet"
	NumPages    int    `json:"numPages,omitempty"`
	Pages       []Page `json:"pages,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	SheetURL    string `json:"sheetUrl,omitempty"`
}

// Resolver assembles the content payload for a document version from
// presigned object URLs. Rendering and transcoding happen elsewhere; the
// resolver only hands out time-limited access to what is already stored.
type Resolver struct {
	store  *Store
	urlTTL time.Duration
}

func NewResolver(store *Store, urlTTL time.Duration) *Resolver {
	return &Resolver{store: store, urlTTL: urlTTL}
}

func (r *Resolver) Resolve(ctx context.Context, version *domain.DocumentVersion) (*Content, error) {
	switch version.Kind {
	case domain.ContentKindPaged:
		pages := make([]Page, 0, len(version.PageKeys))
		for i, key := range version.PageKeys {
			url, err := r.store.PresignedURL(ctx, key, r.urlTTL)
			if err != nil {
				return nil, fmt.Errorf("presign page %d: %w", i+1, err)
			}
			pages = append(pages, Page{Number: i + 1, URL: url})
		}
		return &Content{ContentType: domain.ContentKindPaged, NumPages: version.NumPages, Pages: pages}, nil
	case domain.ContentKindFile:
		url, err := r.store.PresignedURL(ctx, version.StorageKey, r.urlTTL)
		if err != nil {
			return nil, fmt.Errorf("presign file: %w", err)
		}
		return &Content{ContentType: domain.ContentKindFile, FileURL: url}, nil
	case domain.ContentKindSheet:
		url, err := r.store.PresignedURL(ctx, version.StorageKey, r.urlTTL)
		if err != nil {
			return nil, fmt.Errorf("presign sheet: %w", err)
		}
		return &Content{ContentType: domain.ContentKindSheet, SheetURL: url}, nil
	default:
		return nil, fmt.Errorf("unknown content kind %q: %w", version.Kind, domain.ErrNotFound)
	}
}
