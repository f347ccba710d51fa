package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/auto-request/request"
	"github.com/brizzai/auto-request/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okTransport = transport.Func(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	return &transport.Response{StatusCode: 200}, nil
})

func TestRequestFlagsApply(t *testing.T) {
	f := &requestFlags{
		headers:     []string{"Accept: application/json", "x-trace:abc"},
		query:       []string{"tag=a", "tag=b"},
		params:      []string{"id=42"},
		data:        `{"name":"ada"}`,
		contentType: "application/json",
		retryOn:     "502, 503",
		retryNet:    true,
	}

	b := request.New("https://api.example.com/users/:id", okTransport)
	require.NoError(t, f.apply(b))

	accept, _ := b.Header("accept")
	assert.Equal(t, "application/json", accept)
	trace, _ := b.Header("X-Trace")
	assert.Equal(t, "abc", trace)
	assert.Equal(t, []string{"a", "b"}, b.QueryParam("tag"))
	assert.Equal(t, `{"name":"ada"}`, b.Body())
	assert.Equal(t, "application/json", b.ContentType())

	exe, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users/42", exe.Descriptor().URL())
}

func TestRequestFlagsApplyErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags requestFlags
		want  string
	}{
		{name: "header without colon", flags: requestFlags{headers: []string{"accept"}}, want: "invalid header"},
		{name: "query without equals", flags: requestFlags{query: []string{"page"}}, want: "invalid query parameter"},
		{name: "param without equals", flags: requestFlags{params: []string{"id"}}, want: "invalid path parameter"},
		{name: "bad status code", flags: requestFlags{retryOn: "50x"}, want: "invalid status code"},
		{name: "missing body file", flags: requestFlags{data: "@does-not-exist.json"}, want: "failed to read body file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.apply(request.New("https://api.example.com", okTransport))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseStatusCodes(t *testing.T) {
	codes, err := parseStatusCodes("401, 503,,")
	require.NoError(t, err)
	assert.Equal(t, []int{401, 503}, codes)

	_, err = parseStatusCodes("700")
	assert.Error(t, err)
}

func TestReadBody(t *testing.T) {
	body, err := readBody("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", body)

	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o600))
	body, err = readBody("@" + path)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), body)
}
