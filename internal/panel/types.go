package panel

import "encoding/json"

// Instance is a hosted server as returned by the application API. The typed fields
// drive the scan; the full record, including attributes not declared here, is kept
// and written verbatim into the run reports.
type Instance struct {
	ID          int     `json:"id"`
	ExternalID  *string `json:"external_id"`
	UUID        string  `json:"uuid"`
	Identifier  string  `json:"identifier"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Suspended   bool    `json:"suspended"`
	Status      *string `json:"status"`
	User        int     `json:"user"`
	Node        int     `json:"node"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the typed fields and keeps the full record.
func (i *Instance) UnmarshalJSON(data []byte) error {
	type plain Instance
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = Instance(p)
	i.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the record as the panel sent it, or the typed fields
// for instances built in code.
func (i Instance) MarshalJSON() ([]byte, error) {
	if len(i.raw) > 0 {
		return i.raw, nil
	}
	type plain Instance
	return json.Marshal(plain(i))
}

// IsSuspended reports whether the panel already considers the instance suspended.
// Older panels expose a boolean, newer ones a status string.
func (i Instance) IsSuspended() bool {
	return i.Suspended || (i.Status != nil && *i.Status == StatusSuspended)
}

// StatusSuspended is the status value newer panels use for suspended servers.
const StatusSuspended = "suspended"

// Entry is one item of a directory listing.
type Entry struct {
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Size      int64  `json:"size"`
	IsFile    bool   `json:"is_file"`
	IsSymlink bool   `json:"is_symlink"`
	Mimetype  string `json:"mimetype"`
}

// object wraps every resource the panel returns.
type object[T any] struct {
	Object     string `json:"object"`
	Attributes T      `json:"attributes"`
}

// listResponse is the envelope of every list endpoint.
type listResponse[T any] struct {
	Object string      `json:"object"`
	Data   []object[T] `json:"data"`
	Meta   *meta       `json:"meta,omitempty"`
}

type meta struct {
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Total       int `json:"total"`
	Count       int `json:"count"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// attributes unwraps the data envelope.
func (r *listResponse[T]) attributes() []T {
	out := make([]T, 0, len(r.Data))
	for _, o := range r.Data {
		out = append(out, o.Attributes)
	}
	return out
}
