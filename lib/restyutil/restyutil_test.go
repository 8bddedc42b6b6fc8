package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestRedactBody(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{
			in:       `{"credentials":{"name":"ana","password":"hunter2","site":{"contentUrl":"finance"}}}`,
			expected: `{"credentials":{"name":"ana","password":"[REDACTED]","site":{"contentUrl":"finance"}}}`,
		},
		{
			in:       `{"credentials": {"token" : "abc\"def", "site": {"id": "1"}}}`,
			expected: `{"credentials": {"token" : "[REDACTED]", "site": {"id": "1"}}}`,
		},
		{
			in:       `<tsResponse><credentials token="abc123"><site id="9"/></credentials></tsResponse>`,
			expected: `<tsResponse><credentials token="[REDACTED]"><site id="9"/></credentials></tsResponse>`,
		},
		{
			in:       `{"projects":{"project":[{"id":"1","name":"Sales"}]}}`,
			expected: `{"projects":{"project":[{"id":"1","name":"Sales"}]}}`,
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, RedactBody(test.in))
	}
}

func TestRedactHeaders(t *testing.T) {
	headers := http.Header{
		"X-Tableau-Auth": {"secret-token"},
		"Accept":         {"application/json"},
	}
	redacted := RedactHeaders(headers)
	require.Equal(t, []string{Redacted}, redacted["X-Tableau-Auth"])
	require.Equal(t, []string{"application/json"}, redacted["Accept"])
	// the original is untouched
	require.Equal(t, "secret-token", headers.Get("X-Tableau-Auth"))
}

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[id] = contents
}

func TestDumpMessagesRedactsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"credentials":{"token":"server-token","site":{"id":"site-1"}}}`))
	}))
	defer server.Close()

	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	DumpMessages(client, output)

	_, err := client.R().
		SetHeader("X-Tableau-Auth", "client-token").
		SetBody(map[string]any{"credentials": map[string]any{"password": "hunter2"}}).
		Post("/api/3.26/auth/signin")
	require.NoError(t, err)

	require.Len(t, output.messages, 1)
	for id, msg := range output.messages {
		require.Equal(t, "001_POST.txt", id)
		require.Contains(t, msg, "---- REQUEST ----")
		require.Contains(t, msg, "/api/3.26/auth/signin")
		require.NotContains(t, msg, "hunter2")
		require.NotContains(t, msg, "client-token")
		require.NotContains(t, msg, "server-token")
		require.Contains(t, msg, "site-1")
	}
}

func TestDumpMessagesBodylessRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`{"projects":{"project":[]}}`))
	}))
	defer server.Close()

	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	DumpMessages(client, output)

	_, err := client.R().Get("/api/3.26/sites/site-1/projects")
	require.NoError(t, err)
	_, err = client.R().Post("/api/3.26/auth/signout")
	require.NoError(t, err)

	require.Len(t, output.messages, 2)
	require.Contains(t, output.messages["001_GET.txt"], "<NO BODY AVAILABLE>")
	require.Contains(t, output.messages["001_GET.txt"], `{"projects":{"project":[]}}`)
	require.Contains(t, output.messages["002_POST.txt"], "<NO BODY AVAILABLE>")
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	out.Write("001_GET.txt", "hello")
	contents, err := os.ReadFile(filepath.Join(dir, "001_GET.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(contents))
	require.True(t, strings.HasSuffix(out.Dir(), "dumps"))
}
