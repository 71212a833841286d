package domain

import "time"

// Content kinds for document versions. They select the response payload
// variant assembled after a view is recorded.
const (
	ContentKindPaged = "paged"
	ContentKindFile  = "file"
	ContentKindSheet = "sheet"
)

// DocumentVersion is one processed revision of a document. PageKeys holds the
// object-store keys of rendered pages for paged content; StorageKey the raw
// object for file and sheet content.
type DocumentVersion struct {
	VersionID  string   `json:"version_id" dynamodbav:"version_id"`
	Kind       string   `json:"kind" dynamodbav:"kind"`
	NumPages   int      `json:"num_pages" dynamodbav:"num_pages"`
	StorageKey string   `json:"storage_key" dynamodbav:"storage_key"`
	PageKeys   []string `json:"page_keys,omitempty" dynamodbav:"page_keys"`
}

// Document is the shared content behind a link.
type Document struct {
	DocumentID       string            `json:"document_id" dynamodbav:"document_id"`
	TeamID           string            `json:"team_id" dynamodbav:"team_id"`
	Name             string            `json:"name" dynamodbav:"name"`
	CurrentVersionID string            `json:"current_version_id" dynamodbav:"current_version_id"`
	Versions         []DocumentVersion `json:"versions" dynamodbav:"versions"`
	CreatedAt        time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// Version returns the version with the given id, or the current version when
// versionID is empty. Returns nil when no matching version exists.
func (d *Document) Version(versionID string) *DocumentVersion {
	if versionID == "" {
		versionID = d.CurrentVersionID
	}
	for i := range d.Versions {
		if d.Versions[i].VersionID == versionID {
			return &d.Versions[i]
		}
	}
	return nil
}
