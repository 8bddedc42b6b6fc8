package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server  string `json:"server"`
	Site    string `json:"site"`
	Project string `json:"project"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalName(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "tabrefresh.local.json5"), LocalName("conf/tabrefresh.json5"))
	require.Equal(t, "config.local", LocalName("config"))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "tabrefresh.json5")

	writeFile(t, name, `{
		// comments and trailing commas are fine in json5
		server: "https://tableau.internal",
		site: "finance",
	}`)
	writeFile(t, LocalName(name), `{site: "finance-dev", project: "Sales"}`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Server:  "https://tableau.internal",
		Site:    "finance-dev",
		Project: "Sales",
	}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := ReadOptional[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{}, cfg)
}

func TestReadConfigInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "broken.json5")
	writeFile(t, name, `{server: `)

	_, err := ReadOptional[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}
