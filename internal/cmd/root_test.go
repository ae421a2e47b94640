package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/slipstream/metascrape/internal/config"
	"github.com/slipstream/metascrape/internal/logger"
	"github.com/slipstream/metascrape/internal/metadata"
	"github.com/slipstream/metascrape/internal/transport"
)

func newTMDBServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/configuration":
			w.Write([]byte(`{"images": {"secure_base_url": "https://img.test/p/"}}`))
		case "/search/movie":
			w.Write([]byte(`{"page": 1, "total_pages": 1, "results": [{"id": 603, "title": "The Matrix", "release_date": "1999-03-30"}]}`))
		case "/movie/603":
			w.Write([]byte(`{"id": 603, "imdb_id": "tt0133093", "title": "The Matrix", "release_date": "1999-03-30", "runtime": 136}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `logging:
  level: error
metadata:
  tmdb:
    api_key: test-key
    base_url: ` + baseURL + `
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	server := newTMDBServer(t)
	configPath := writeConfig(t, server.URL)

	out, err := run(t, "--config", configPath, "search", "The", "Matrix")
	require.NoError(t, err)

	var got searchOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "tmdb", got.Provider)
	assert.Equal(t, "The Matrix", got.Query)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "603", got.Results[0].ID)
	assert.Equal(t, "The Matrix", got.Results[0].Title)
	assert.Nil(t, got.Error)
}

func TestLoadCommand(t *testing.T) {
	server := newTMDBServer(t)
	configPath := writeConfig(t, server.URL)

	out, err := run(t, "--config", configPath, "load", "603", "--fields", "title,runtime")
	require.NoError(t, err)

	var got struct {
		Provider string   `yaml:"provider"`
		Media    string   `yaml:"media"`
		Written  []string `yaml:"written"`
		Entity   struct {
			Title   string `yaml:"title"`
			Runtime int    `yaml:"runtime"`
		} `yaml:"entity"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "tmdb", got.Provider)
	assert.Equal(t, "movie", got.Media)
	assert.ElementsMatch(t, []string{"title", "runtime"}, got.Written)
	assert.Equal(t, "The Matrix", got.Entity.Title)
	assert.Equal(t, 136, got.Entity.Runtime)
}

func TestProvidersCommand(t *testing.T) {
	server := newTMDBServer(t)
	configPath := writeConfig(t, server.URL)

	out, err := run(t, "--config", configPath, "providers")
	require.NoError(t, err)

	var got []metadata.ProviderInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "fanarttv", got[0].Name)
	assert.Equal(t, "tmdb", got[2].Name)
	assert.True(t, got[2].Configured)
}

func TestCommandErrors(t *testing.T) {
	server := newTMDBServer(t)
	configPath := writeConfig(t, server.URL)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown provider", []string{"--config", configPath, "--provider", "nope", "search", "x"}, metadata.ErrUnknownProvider},
		{"invalid media", []string{"--config", configPath, "load", "603", "--media", "book"}, nil},
		{"invalid fields", []string{"--config", configPath, "load", "603", "--fields", "nope"}, nil},
		{"missing query", []string{"--config", configPath, "search"}, nil},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "search", "x"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNewScheduler(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"}, io.Discard)
	a := &app{cfg: config.Default(), log: log, transport: transport.New(transport.Config{}, log.Logger)}
	svc, err := a.newService()
	require.NoError(t, err)

	sched, err := newScheduler(a, svc)
	require.NoError(t, err)
	require.Len(t, sched.ListTasks(), 1)
	assert.Equal(t, "provider-configuration", sched.ListTasks()[0].ID)
	_ = sched.Stop()

	a.cfg.Scheduler.ConfigureCron = ""
	sched, err = newScheduler(a, svc)
	require.NoError(t, err)
	assert.Empty(t, sched.ListTasks())
	_ = sched.Stop()

	a.cfg.Scheduler.ConfigureCron = "every tuesday"
	_, err = newScheduler(a, svc)
	assert.Error(t, err)
}
