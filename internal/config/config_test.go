package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdxsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: Notes\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Notes", cfg.Site.Title)
	assert.Equal(t, "/style.css", cfg.Site.Stylesheet)
	assert.Equal(t, ".mdx", cfg.Source.Extension)
	assert.Equal(t, "./public", cfg.Output.Directory)
	assert.True(t, cfg.Output.Manifest)
	assert.True(t, cfg.Build.VerifyLinks)
	assert.Equal(t, 4, cfg.Build.AssetWorkers)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_ExplicitFalseOverridesDefault(t *testing.T) {
	path := writeConfig(t, "output:\n  directory: out\n  manifest: false\nbuild:\n  verify_links: false\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Output.Manifest)
	assert.False(t, cfg.Build.VerifyLinks)
	assert.Equal(t, "out", cfg.Output.Directory)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("MDXSITE_TEST_OUT", "/srv/site")
	path := writeConfig(t, "output:\n  directory: ${MDXSITE_TEST_OUT}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/site", cfg.Output.Directory)
}

func TestLoad_NormalizesLogging(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: WARNING\n  format: ' JSON '\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown log level", "logging:\n  level: loud\n", "invalid log level"},
		{"bad extension", "source:\n  extension: mdx\n", "source.extension"},
		{"too many workers", "build:\n  asset_workers: 500\n", "build.asset_workers"},
		{"empty title", "site:\n  title: ''\n", "site.title"},
		{"bad base url", "site:\n  base_url: not a url\n", "site.base_url"},
		{"bad yaml", "site: [\n", "failed to unmarshal config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestResolve_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvFiles_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("MDXSITE_TEST_A=from-file\nMDXSITE_TEST_B=from-file\n"), 0o600))
	t.Setenv("MDXSITE_TEST_A", "from-env")
	t.Setenv("MDXSITE_TEST_B", "")
	require.NoError(t, os.Unsetenv("MDXSITE_TEST_B"))

	require.NoError(t, loadEnvFiles())
	assert.Equal(t, "from-env", os.Getenv("MDXSITE_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("MDXSITE_TEST_B"))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdxsite.yaml")

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.Site.BaseURL)

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Init(path, true))
}

func TestLogLevel_SlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.SlogLevel().String())
	assert.Equal(t, "WARN", NormalizeLogLevel("warning").SlogLevel().String())
	assert.Equal(t, "INFO", NormalizeLogLevel("bogus").SlogLevel().String())
	assert.Equal(t, LogFormatText, NormalizeLogFormat("xml"))
}
