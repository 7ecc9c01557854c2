package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/panelscan/internal/ratelimit"
	"github.com/scan-io-git/panelscan/pkg/shared/config"
	"github.com/scan-io-git/panelscan/pkg/shared/errors"
)

const (
	appToken    = "ptla_application"
	clientToken = "ptlc_client"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *ratelimit.Limiter) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Panel: config.Panel{
		BaseURL:          srv.URL + "/api",
		ApplicationToken: appToken,
		ClientToken:      clientToken,
	}}
	config.ApplyDefaults(cfg)
	limiter := ratelimit.New(0)
	return NewClient(cfg, limiter, hclog.NewNullLogger()), limiter
}

func requireToken(t *testing.T, r *http.Request, token string) {
	t.Helper()
	assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"), "wrong token for %s", r.URL.Path)
}

func TestListInstancesFollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/application/servers", func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r, appToken)
		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case "1":
			fmt.Fprint(w, `{"object":"list","data":[
				{"object":"server","attributes":{"id":1,"identifier":"aaaa1111","name":"bot-a","suspended":false}},
				{"object":"server","attributes":{"id":2,"identifier":"bbbb2222","name":"bot-b","suspended":true}}
			],"meta":{"pagination":{"total":3,"count":2,"per_page":2,"current_page":1,"total_pages":2}}}`)
		case "2":
			fmt.Fprint(w, `{"object":"list","data":[
				{"object":"server","attributes":{"id":3,"identifier":"cccc3333","name":"bot-c","status":"suspended"}}
			],"meta":{"pagination":{"total":3,"count":1,"per_page":2,"current_page":2,"total_pages":2}}}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	client, limiter := newTestClient(t, mux)

	instances, err := client.ListInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 3)

	assert.Equal(t, "aaaa1111", instances[0].Identifier)
	assert.False(t, instances[0].IsSuspended())
	assert.True(t, instances[1].IsSuspended())
	assert.True(t, instances[2].IsSuspended())
	assert.Equal(t, 3, instances[2].ID)
	assert.Equal(t, uint64(2), limiter.Acquired())
}

func TestListInstancesKeepsUndeclaredAttributes(t *testing.T) {
	attrs := `{"id":1,"identifier":"aaaa1111","name":"bot-a","suspended":false,"limits":{"memory":512,"swap":0},"egg":15}`
	mux := http.NewServeMux()
	mux.HandleFunc("/api/application/servers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"object":"list","data":[{"object":"server","attributes":%s}],
			"meta":{"pagination":{"total":1,"count":1,"per_page":50,"current_page":1,"total_pages":1}}}`, attrs)
	})
	client, _ := newTestClient(t, mux)

	instances, err := client.ListInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 1)

	out, err := json.Marshal(instances[0])
	require.NoError(t, err)
	assert.JSONEq(t, attrs, string(out))

	built, err := json.Marshal(Instance{ID: 2, Identifier: "bbbb2222"})
	require.NoError(t, err)
	assert.Contains(t, string(built), `"identifier":"bbbb2222"`)
}

func TestListInstancesError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors":[{"code":"AccessDeniedHttpException"}]}`)
	}))

	_, err := client.ListInstances(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsStatus(err, http.StatusForbidden))
}

func TestListDirectory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/client/servers/aaaa1111/files/list", func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r, clientToken)
		assert.Equal(t, "/src/lib", r.URL.Query().Get("directory"))
		fmt.Fprint(w, `{"object":"list","data":[
			{"object":"file_object","attributes":{"name":"index.js","is_file":true,"size":812}},
			{"object":"file_object","attributes":{"name":"utils","is_file":false}},
			{"object":"file_object","attributes":{"name":"link","is_file":false,"is_symlink":true}}
		]}`)
	})
	client, _ := newTestClient(t, mux)

	entries, err := client.ListDirectory(context.Background(), "aaaa1111", "/src/lib")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "index.js", IsFile: true, Size: 812},
		{Name: "utils"},
		{Name: "link", IsSymlink: true},
	}, entries)
}

func TestReadFileKeepsRawContent(t *testing.T) {
	content := "  const x = 1;\n\n"
	mux := http.NewServeMux()
	mux.HandleFunc("/api/client/servers/aaaa1111/files/contents", func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r, clientToken)
		assert.Equal(t, "/bot.js", r.URL.Query().Get("file"))
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, content)
	})
	client, _ := newTestClient(t, mux)

	got, err := client.ReadFile(context.Background(), "aaaa1111", "/bot.js")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestReadFileNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())

	_, err := client.ReadFile(context.Background(), "aaaa1111", "/missing.js")
	require.Error(t, err)
	assert.True(t, errors.IsStatus(err, http.StatusNotFound))
}

func TestSuspend(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/application/servers/42/suspend", func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r, appToken)
		assert.Equal(t, http.MethodPost, r.Method)
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := newTestClient(t, mux)

	require.NoError(t, client.Suspend(context.Background(), 42))
	assert.True(t, called)
}

func TestSuspendFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := client.Suspend(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.IsStatus(err, http.StatusInternalServerError))
}
