package delivery

import "context"

// Site is a destination site that documents can be delivered to.
type Site struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

// Folder is a top-level folder in a site's default document library.
type Folder struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
}

// Gateway lists destinations and uploads finished documents to them.
type Gateway interface {
	ListSites(ctx context.Context) ([]Site, error)
	ListFolders(ctx context.Context, siteID string) ([]Folder, error)
	// UploadFile puts the local file at path into folder of site, keeping its base name.
	UploadFile(ctx context.Context, siteID, folder, path string) error
}
