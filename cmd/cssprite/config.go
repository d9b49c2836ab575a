package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/cssprite"
)

// defaultConfigPath is read when --config is not given
const defaultConfigPath = ".cssprite.yaml"

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	// Resolve config file path from flag
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Load config file and env vars
	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set)
	flags := cmd.Flags()
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	}), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (CSSPRITE_* prefix)
	if err := k.Load(env.Provider("CSSPRITE_", ".", envKey), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// configKeys lists every config key. Env names are derived from them so
// hyphenated keys stay reachable: CSSPRITE_GENERATE_OUTPUT_DIR -> generate.output-dir
var configKeys = []string{
	"verbose", "quiet", "color", "watch", "log-format", "log-level",
	"generate.source", "generate.output-dir", "generate.build-dir",
	"generate.public-path", "generate.prefix", "generate.stylesheet-prefix",
	"generate.extensions", "generate.ignore-file", "generate.template",
	"generate.continue-on-error",
	"generate.sprite.padding", "generate.sprite.algorithm", "generate.sprite.format",
	"generate.retina.enabled", "generate.retina.suffix", "generate.retina.ratio",
	"inspect.strict",
}

var envKeys = func() map[string]string {
	m := make(map[string]string, len(configKeys))
	for _, key := range configKeys {
		m[strings.NewReplacer(".", "_", "-", "_").Replace(key)] = key
	}
	return m
}()

// envKey maps CSSPRITE_GENERATE_SOURCE to generate.source. Unknown names
// fall back to replacing every underscore with a dot.
func envKey(s string) string {
	name := strings.ToLower(strings.TrimPrefix(s, "CSSPRITE_"))
	if key, ok := envKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "_", ".")
}

// buildConfig constructs the library's Config struct from koanf state.
func buildConfig() (cssprite.Config, error) {
	defaults := cssprite.DefaultConfig()

	config := cssprite.Config{
		SourceDir:  getStringWithFallback("source", "generate.source", defaults.SourceDir),
		OutputDir:  getStringWithFallback("output-dir", "generate.output-dir", defaults.OutputDir),
		BuildDir:   getStringWithFallback("build-dir", "generate.build-dir", defaults.BuildDir),
		PublicPath: getStringWithFallback("public-path", "generate.public-path", defaults.PublicPath),
		Prefix:     getStringWithFallback("prefix", "generate.prefix", defaults.Prefix),
		Sprite: cssprite.PackOptions{
			Padding:   getIntWithFallback("padding", "generate.sprite.padding", defaults.Sprite.Padding),
			Algorithm: getStringWithFallback("algorithm", "generate.sprite.algorithm", defaults.Sprite.Algorithm),
			Format:    getStringWithFallback("format", "generate.sprite.format", defaults.Sprite.Format),
		},
		Retina: cssprite.RetinaOptions{
			Enabled: getBoolWithFallback("retina", "generate.retina.enabled", defaults.Retina.Enabled),
			Suffix:  getStringWithFallback("retina-suffix", "generate.retina.suffix", defaults.Retina.Suffix),
			Ratio:   getFloat64WithFallback("retina-ratio", "generate.retina.ratio", defaults.Retina.Ratio),
		},
		StylesheetPrefix: getStringWithFallback("stylesheet-prefix", "generate.stylesheet-prefix", defaults.StylesheetPrefix),
		IgnoreFile:       getStringWithFallback("ignore-file", "generate.ignore-file", defaults.IgnoreFile),
		DevWatch:         getBoolWithFallback("watch", "watch", false),
		ContinueOnError:  getBoolWithFallback("continue-on-error", "generate.continue-on-error", false),
		Verbose:          getBoolWithFallback("verbose", "verbose", false),
	}

	// Handle extensions: check flag key first, then config key
	if exts := k.Strings("extensions"); len(exts) > 0 {
		config.Extensions = exts
	} else if exts := k.Strings("generate.extensions"); len(exts) > 0 {
		config.Extensions = exts
	} else {
		config.Extensions = defaults.Extensions
	}

	if path := getStringWithFallback("template", "generate.template", ""); path != "" {
		tpl, err := cssprite.LoadTemplateFile(path)
		if err != nil {
			return config, err
		}
		config.Template = tpl
	}

	return config, nil
}

// logLevel maps --quiet and --verbose to a slog level name
func logLevel() string {
	switch {
	case getBoolWithFallback("quiet", "quiet", false):
		return "error"
	case getBoolWithFallback("verbose", "verbose", false):
		return "debug"
	default:
		return getStringWithFallback("log-level", "log-level", "info")
	}
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}

// getFloat64WithFallback checks the flag key first, then the config file key, then returns the default.
func getFloat64WithFallback(flagKey, configKey string, defaultVal float64) float64 {
	if k.Exists(flagKey) {
		return k.Float64(flagKey)
	}
	if k.Exists(configKey) {
		return k.Float64(configKey)
	}
	return defaultVal
}
