package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type driveItem struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	WebURL string    `json:"webUrl"`
	Folder *struct{} `json:"folder"`
}

func (g *implGateway) ListSites(ctx context.Context) ([]Site, error) {
	var out struct {
		Value []Site `json:"value"`
	}
	if err := g.getJSON(ctx, "/sites?search=*", &out); err != nil {
		return nil, fmt.Errorf("%w: sites: %w", ErrListing, err)
	}
	if out.Value == nil {
		out.Value = []Site{}
	}
	return out.Value, nil
}

func (g *implGateway) ListFolders(ctx context.Context, siteID string) ([]Folder, error) {
	if siteID == "" {
		return nil, fmt.Errorf("%w: site id is empty", ErrListing)
	}

	var out struct {
		Value []driveItem `json:"value"`
	}
	path := "/sites/" + url.PathEscape(siteID) + "/drive/root/children"
	if err := g.getJSON(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("%w: folders of %s: %w", ErrListing, siteID, err)
	}

	folders := make([]Folder, 0, len(out.Value))
	for _, item := range out.Value {
		if item.Folder == nil {
			continue
		}
		folders = append(folders, Folder{ID: item.ID, Name: item.Name, WebURL: item.WebURL})
	}
	return folders, nil
}

func (g *implGateway) UploadFile(ctx context.Context, siteID, folder, path string) error {
	if siteID == "" {
		return fmt.Errorf("%w: site id is empty", ErrDelivery)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrDelivery, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrDelivery, path, err)
	}

	target := "/sites/" + url.PathEscape(siteID) + "/drive/root:/" + escapeItemPath(folder, filepath.Base(path)) + ":/content"

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.baseURL+target, f)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrDelivery, err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: upload returned %d: %s", ErrDelivery, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	g.logger.Info(ctx, "Delivered %s to site %s folder %q", filepath.Base(path), siteID, folder)
	return nil
}

func (g *implGateway) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// escapeItemPath joins folder segments and the file name into an escaped drive path.
func escapeItemPath(folder, name string) string {
	var parts []string
	for _, seg := range strings.Split(folder, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			parts = append(parts, url.PathEscape(seg))
		}
	}
	parts = append(parts, url.PathEscape(name))
	return strings.Join(parts, "/")
}
