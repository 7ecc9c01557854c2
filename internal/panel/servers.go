package panel

import (
	"context"
	"fmt"
	"strconv"
)

// ListInstances retrieves every server known to the panel, following pagination.
func (c *Client) ListInstances(ctx context.Context) ([]Instance, error) {
	var result []Instance
	page := 1
	c.logger.Debug("fetching list of instances")

	for {
		c.logger.Debug("fetching page of instances", "page", page, "per_page", c.perPage)
		resp, err := c.request(ctx, c.application).
			SetQueryParams(map[string]string{
				"page":     strconv.Itoa(page),
				"per_page": strconv.Itoa(c.perPage),
			}).
			Get("/application/servers")
		if err := checkResponse(resp, err); err != nil {
			return nil, fmt.Errorf("error fetching instances: %w", err)
		}

		var list listResponse[Instance]
		if err := unmarshalResponse(resp, &list); err != nil {
			return nil, fmt.Errorf("error fetching instances: %w", err)
		}
		result = append(result, list.attributes()...)

		if list.Meta == nil || list.Meta.Pagination.CurrentPage >= list.Meta.Pagination.TotalPages {
			break
		}
		page = list.Meta.Pagination.CurrentPage + 1
	}

	c.logger.Debug("successfully fetched all instances", "total", len(result))
	return result, nil
}

// Suspend asks the panel to suspend the server with the given numeric id.
func (c *Client) Suspend(ctx context.Context, id int) error {
	resp, err := c.request(ctx, c.application).
		SetPathParam("id", strconv.Itoa(id)).
		SetBody(struct{}{}).
		Post("/application/servers/{id}/suspend")
	if err := checkResponse(resp, err); err != nil {
		return fmt.Errorf("error suspending instance %d: %w", id, err)
	}
	return nil
}
