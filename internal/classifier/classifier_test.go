package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/panelscan/internal/ratelimit"
	"github.com/scan-io-git/panelscan/pkg/shared/config"
)

func TestParseVerdict(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    Result
		wantErr bool
	}{
		{
			name:    "valid",
			content: `{"data":{"rating":7,"description":"obfuscated payload"}}`,
			want:    Scored(7, "obfuscated payload"),
		},
		{
			name:    "zero is no risk",
			content: "\n{\"data\":{\"description\":\"benign\",\"rating\":0}}\n",
			want:    Scored(0, "benign"),
		},
		{
			name:    "integral float",
			content: `{"data":{"rating":10.0,"description":"token grabber"}}`,
			want:    Scored(10, "token grabber"),
		},
		{name: "rating as string", content: `{"data":{"rating":"9","description":"x"}}`, wantErr: true},
		{name: "rating false", content: `{"data":{"rating":false,"description":false}}`, wantErr: true},
		{name: "rating above scale", content: `{"data":{"rating":11,"description":"x"}}`, wantErr: true},
		{name: "rating below scale", content: `{"data":{"rating":-1,"description":"x"}}`, wantErr: true},
		{name: "fractional rating", content: `{"data":{"rating":8.5,"description":"x"}}`, wantErr: true},
		{name: "missing description", content: `{"data":{"rating":3}}`, wantErr: true},
		{name: "null description", content: `{"data":{"rating":3,"description":null}}`, wantErr: true},
		{name: "missing data", content: `{"rating":3,"description":"x"}`, wantErr: true},
		{name: "code fence", content: "```json\n{\"data\":{\"rating\":3,\"description\":\"x\"}}\n```", wantErr: true},
		{name: "prose", content: `Here is the rating: {"data":{"rating":3,"description":"x"}}`, wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVerdict(tc.content)
			if tc.wantErr {
				assert.ErrorIs(t, err, errMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// fakeOracle answers each request with the next reply; the last reply repeats.
type fakeOracle struct {
	t        *testing.T
	replies  []oracleReply
	requests atomic.Int32
}

type oracleReply struct {
	status  int
	content string
	raw     string
}

func (f *fakeOracle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(f.requests.Add(1))
	assert.Equal(f.t, "/v1/chat/completions", r.URL.Path)
	assert.Equal(f.t, "Bearer test-key", r.Header.Get("Authorization"))

	var req chatRequest
	if !assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req)) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	assert.Equal(f.t, "test-model", req.Model)
	if !assert.Len(f.t, req.Messages, 2) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	assert.Equal(f.t, "system", req.Messages[0].Role)
	assert.Equal(f.t, SystemPrompt, req.Messages[0].Content)
	assert.Equal(f.t, "user", req.Messages[1].Role)

	reply := f.replies[len(f.replies)-1]
	if n <= len(f.replies) {
		reply = f.replies[n-1]
	}
	if reply.status != 0 && reply.status != http.StatusOK {
		w.WriteHeader(reply.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if reply.raw != "" {
		_, _ = w.Write([]byte(reply.raw))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": reply.content}},
		},
	})
}

func newTestClient(t *testing.T, oracle *fakeOracle) (*Client, *ratelimit.Limiter) {
	t.Helper()
	srv := httptest.NewServer(oracle)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Oracle: config.Oracle{
		BaseURL: srv.URL + "/v1",
		APIKey:  "test-key",
		Model:   "test-model",
	}}
	config.ApplyDefaults(cfg)
	limiter := ratelimit.New(0)
	return NewClient(cfg, limiter, hclog.NewNullLogger()), limiter
}

func TestClassify(t *testing.T) {
	valid := `{"data":{"rating":9,"description":"downloads and runs a remote binary"}}`

	testCases := []struct {
		name         string
		replies      []oracleReply
		want         Result
		wantRequests int32
	}{
		{
			name:         "first attempt succeeds",
			replies:      []oracleReply{{content: valid}},
			want:         Scored(9, "downloads and runs a remote binary"),
			wantRequests: 1,
		},
		{
			name: "succeeds on last attempt",
			replies: []oracleReply{
				{status: http.StatusTooManyRequests},
				{content: "I think this is a 9"},
				{content: valid},
			},
			want:         Scored(9, "downloads and runs a remote binary"),
			wantRequests: 3,
		},
		{
			name:         "server errors exhaust attempts",
			replies:      []oracleReply{{status: http.StatusInternalServerError}},
			want:         Indeterminate(),
			wantRequests: 3,
		},
		{
			name:         "malformed shape exhausts attempts",
			replies:      []oracleReply{{content: `{"data":{"rating":false,"description":false}}`}},
			want:         Indeterminate(),
			wantRequests: 3,
		},
		{
			name:         "no choices",
			replies:      []oracleReply{{raw: `{"choices":[]}`}},
			want:         Indeterminate(),
			wantRequests: 3,
		},
		{
			name:         "undecodable body",
			replies:      []oracleReply{{raw: `not json`}},
			want:         Indeterminate(),
			wantRequests: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oracle := &fakeOracle{t: t, replies: tc.replies}
			client, limiter := newTestClient(t, oracle)

			got := client.Classify(context.Background(), "const token = process.env.TOKEN;")

			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantRequests, oracle.requests.Load())
			assert.Equal(t, uint64(tc.wantRequests), limiter.Acquired())
		})
	}
}

func TestClassifyCancelledContext(t *testing.T) {
	oracle := &fakeOracle{t: t, replies: []oracleReply{{content: `{"data":{"rating":1,"description":"x"}}`}}}
	client, _ := newTestClient(t, oracle)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := client.Classify(ctx, "print('hi')")
	assert.True(t, got.IsIndeterminate())
	assert.Zero(t, oracle.requests.Load())
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "indeterminate", Indeterminate().String())
	assert.Equal(t, "score(4)", Scored(4, "").String())
}
