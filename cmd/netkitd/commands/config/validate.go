package config

import (
	"fmt"

	"github.com/netkitd/netkitd/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the netkitd configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  netkitd config validate

  # Validate specific config file
  netkitd config validate --config /etc/netkitd/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  NFS bind address:    %s\n", cfg.NFS.BindAddress)
	fmt.Printf("  NFS export root:     %s\n", cfg.NFS.ExportRoot)
	fmt.Printf("  Subnet bind address: %s\n", cfg.Subnet.BindAddress)
	fmt.Printf("  Subnet allowed range: %s\n", cfg.Subnet.AllowedNetwork)
	fmt.Printf("  Log level:           %s\n", cfg.Logging.Level)

	return nil
}
