package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssprite"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
}

// chdir switches into dir for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssprite.yaml")
	configContent := `
verbose: true
watch: true

generate:
  source: custom/icons
  output-dir: custom/public
  prefix: icon-
  sprite:
    padding: 2
    algorithm: top-down
  retina:
    suffix: "@3x"
    ratio: 3
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	assert.True(t, k.Bool("verbose"))
	assert.True(t, k.Bool("watch"))
	assert.Equal(t, "custom/icons", k.String("generate.source"))
	assert.Equal(t, "custom/public", k.String("generate.output-dir"))
	assert.Equal(t, 2, k.Int("generate.sprite.padding"))
	assert.Equal(t, "@3x", k.String("generate.retina.suffix"))
	assert.InDelta(t, 3.0, k.Float64("generate.retina.ratio"), 0.01)
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	// Point to non-existent config, should not error
	require.NoError(t, loadConfigFromPath("/nonexistent/.cssprite.yaml"))

	config, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, cssprite.DefaultConfig(), config)
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssprite.yaml")
	configContent := `
generate:
  source: from-file
watch: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	// Set env vars that should override config file
	t.Setenv("CSSPRITE_GENERATE_SOURCE", "from-env")
	t.Setenv("CSSPRITE_WATCH", "true")

	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "from-env", k.String("generate.source"))
	assert.True(t, k.Bool("watch"))
}

func TestEnvVarsReachHyphenatedKeys(t *testing.T) {
	resetKoanf()

	t.Setenv("CSSPRITE_GENERATE_OUTPUT_DIR", "env/public")
	t.Setenv("CSSPRITE_GENERATE_BUILD_DIR", "env/build")
	t.Setenv("CSSPRITE_GENERATE_PUBLIC_PATH", "/static")
	t.Setenv("CSSPRITE_GENERATE_STYLESHEET_PREFIX", "env-")
	t.Setenv("CSSPRITE_GENERATE_SPRITE_PADDING", "7")
	t.Setenv("CSSPRITE_GENERATE_RETINA_SUFFIX", "@3x")
	t.Setenv("CSSPRITE_GENERATE_CONTINUE_ON_ERROR", "true")
	t.Setenv("CSSPRITE_LOG_LEVEL", "warn")

	require.NoError(t, loadConfigFromPath("/nonexistent/.cssprite.yaml"))

	config, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "env/public", config.OutputDir)
	assert.Equal(t, "env/build", config.BuildDir)
	assert.Equal(t, "/static", config.PublicPath)
	assert.Equal(t, "env-", config.StylesheetPrefix)
	assert.Equal(t, 7, config.Sprite.Padding)
	assert.Equal(t, "@3x", config.Retina.Suffix)
	assert.True(t, config.ContinueOnError)
	assert.Equal(t, "warn", logLevel())
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"CSSPRITE_WATCH", "watch"},
		{"CSSPRITE_GENERATE_SOURCE", "generate.source"},
		{"CSSPRITE_GENERATE_OUTPUT_DIR", "generate.output-dir"},
		{"CSSPRITE_GENERATE_RETINA_ENABLED", "generate.retina.enabled"},
		{"CSSPRITE_INSPECT_STRICT", "inspect.strict"},
		{"CSSPRITE_LOG_FORMAT", "log-format"},
		{"CSSPRITE_SOMETHING_ELSE", "something.else"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.env))
		})
	}
}

func TestBuildConfig_FromConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssprite.yaml")
	configContent := `
generate:
  source: src/sprites
  output-dir: dist/sprites
  build-dir: dist/css
  public-path: /static/sprites
  continue-on-error: true
  extensions:
    - png
  sprite:
    padding: 0
    format: jpeg
  retina:
    enabled: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	config, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "src/sprites", config.SourceDir)
	assert.Equal(t, "dist/sprites", config.OutputDir)
	assert.Equal(t, "dist/css", config.BuildDir)
	assert.Equal(t, "/static/sprites", config.PublicPath)
	assert.True(t, config.ContinueOnError)
	assert.Equal(t, []string{"png"}, config.Extensions)
	assert.Equal(t, 0, config.Sprite.Padding)
	assert.Equal(t, "jpeg", config.Sprite.Format)
	assert.False(t, config.Retina.Enabled)
	assert.Equal(t, "@2x", config.Retina.Suffix, "unset keys keep their defaults")
	assert.NoError(t, config.Validate())
}

func TestBuildConfig_FlagKeyWins(t *testing.T) {
	resetKoanf()

	require.NoError(t, k.Set("generate.sprite.padding", 3))
	require.NoError(t, k.Set("padding", 8))
	require.NoError(t, k.Set("retina", false))

	config, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, 8, config.Sprite.Padding)
	assert.False(t, config.Retina.Enabled)
}

func TestBuildConfig_Template(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	tplPath := filepath.Join(dir, "sprite.tmpl")
	require.NoError(t, os.WriteFile(tplPath, []byte(".{{.ClassName}} {}\n"), 0644))
	require.NoError(t, k.Set("template", tplPath))

	config, err := buildConfig()
	require.NoError(t, err)
	require.NotNil(t, config.Template)

	resetKoanf()
	require.NoError(t, k.Set("template", filepath.Join(dir, "missing.tmpl")))
	_, err = buildConfig()
	require.Error(t, err)
	assert.True(t, cssprite.IsIOError(err))
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]interface{}
		want string
	}{
		{name: "default", want: "info"},
		{name: "verbose", set: map[string]interface{}{"verbose": true}, want: "debug"},
		{name: "quiet wins", set: map[string]interface{}{"verbose": true, "quiet": true}, want: "error"},
		{name: "explicit", set: map[string]interface{}{"log-level": "warn"}, want: "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetKoanf()
			for key, val := range tt.set {
				require.NoError(t, k.Set(key, val))
			}
			assert.Equal(t, tt.want, logLevel())
		})
	}
}

func TestInitCommand_CreatesConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cmd := rootCmd
	cmd.SetArgs([]string{"init"})
	require.NoError(t, cmd.Execute())

	// Verify file was created
	data, err := os.ReadFile(".cssprite.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "generate:")
	assert.Contains(t, string(data), "retina:")

	// The written defaults must round-trip to the library defaults
	resetKoanf()
	require.NoError(t, loadConfigFromPath(".cssprite.yaml"))
	config, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, cssprite.DefaultConfig(), config)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	chdir(t, t.TempDir())

	// Create existing file
	require.NoError(t, os.WriteFile(".cssprite.yaml", []byte("existing"), 0644))

	cmd := rootCmd
	cmd.SetArgs([]string{"init"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommand_ForceOverwrite(t *testing.T) {
	chdir(t, t.TempDir())

	// Create existing file
	require.NoError(t, os.WriteFile(".cssprite.yaml", []byte("existing"), 0644))

	cmd := rootCmd
	cmd.SetArgs([]string{"init", "--force"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(".cssprite.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "stylesheet-prefix: nuxt-spritesmith-")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd
	cmd.SetOut(&out)
	t.Cleanup(func() { cmd.SetOut(nil) })

	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "cssprite dev\n", out.String())
}

func TestResolveVersion_Ldflags(t *testing.T) {
	old := version
	version = "1.2.3"
	t.Cleanup(func() { version = old })

	assert.Equal(t, "1.2.3", resolveVersion())
}

func TestGetStringWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set, should return default
	assert.Equal(t, "default", getStringWithFallback("flag-key", "config.key", "default"))

	require.NoError(t, k.Set("config.key", "from-config"))
	assert.Equal(t, "from-config", getStringWithFallback("flag-key", "config.key", "default"))

	require.NoError(t, k.Set("flag-key", "from-flag"))
	assert.Equal(t, "from-flag", getStringWithFallback("flag-key", "config.key", "default"))
}

func TestGetBoolWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set, should return default
	assert.False(t, getBoolWithFallback("flag-key", "config.key", false))
	assert.True(t, getBoolWithFallback("flag-key", "config.key", true))
}

func TestGetIntWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set, should return default
	assert.Equal(t, 42, getIntWithFallback("flag-key", "config.key", 42))
}

func TestGetFloat64WithFallback(t *testing.T) {
	resetKoanf()

	// No keys set, should return default
	assert.InDelta(t, 3.14, getFloat64WithFallback("flag-key", "config.key", 3.14), 0.01)
}
