package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .cssprite.yaml config file",
	Long:  `Create a .cssprite.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(defaultConfigPath); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigPath)
		}

		// #nosec G306 - config file is meant to be committed
		if err := os.WriteFile(defaultConfigPath, []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", defaultConfigPath)
		return nil
	},
}

const defaultConfig = `# cssprite configuration
# Docs: https://github.com/yacobolo/cssprite

# Shared settings
verbose: false
log-format: text           # text | json
watch: false               # keep running and regenerate changed sets

# Generation settings
generate:
  source: assets/sprites   # every child directory is a sprite set
  output-dir: public/sprites
  build-dir: .cssprite     # stylesheets, sprites.css and manifest.json
  public-path: ""          # URL prefix for sheets, empty uses the sheet path
  prefix: sprite-
  stylesheet-prefix: nuxt-spritesmith-
  ignore-file: .spriteignore
  template: ""             # text/template file replacing the default rules
  continue-on-error: false
  extensions:
    - png
    - jpg
    - jpeg

  sprite:
    padding: 5
    algorithm: binary-tree # top-down | left-right | diagonal | alt-diagonal | binary-tree
    format: png            # png | jpeg

  retina:
    enabled: true
    suffix: "@2x"
    ratio: 2

# Inspect settings
inspect:
  strict: false
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
