package panel

import (
	"context"
	"fmt"
)

// ListDirectory returns the entries of one directory level of an instance.
func (c *Client) ListDirectory(ctx context.Context, identifier, directory string) ([]Entry, error) {
	resp, err := c.request(ctx, c.files).
		SetPathParam("identifier", identifier).
		SetQueryParam("directory", directory).
		Get("/client/servers/{identifier}/files/list")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("error fetching file list for %q in %q: %w", identifier, directory, err)
	}

	var list listResponse[Entry]
	if err := unmarshalResponse(resp, &list); err != nil {
		return nil, fmt.Errorf("error fetching file list for %q in %q: %w", identifier, directory, err)
	}
	return list.attributes(), nil
}

// ReadFile returns the raw content of a file of an instance.
func (c *Client) ReadFile(ctx context.Context, identifier, path string) (string, error) {
	resp, err := c.request(ctx, c.files).
		SetPathParam("identifier", identifier).
		SetQueryParam("file", path).
		SetHeader("Accept", "text/plain").
		Get("/client/servers/{identifier}/files/contents")
	if err := checkResponse(resp, err); err != nil {
		return "", fmt.Errorf("error fetching content of %q for %q: %w", path, identifier, err)
	}
	return string(resp.Body()), nil
}
