package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/sites.yaml
var sitesTemplate embed.FS

// sitesFileName is the default site list file name.
const sitesFileName = "sites.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new site list file",
		Long: `Initialize creates a new sites.yaml site list in the current directory.

The generated file includes:
- One example site entry
- Commented examples for accounts and multiple tags
- Documentation for all available fields

Examples:
  # Create sites.yaml in current directory
  lhaudit init

  # Create the site list at a specific path
  lhaudit init -o config/sites.yaml

  # Force overwrite existing file
  lhaudit init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", sitesFileName,
		"Output file path for the site list")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing site list file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("site list already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := sitesTemplate.ReadFile("templates/sites.yaml")
	if err != nil {
		return fmt.Errorf("failed to read site list template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write site list: %w", err)
	}

	fmt.Printf("Created site list: %s\n", outputPath)
	fmt.Println("\nEdit this file to add the sites to audit, then run:")
	fmt.Printf("  lhaudit audit --sites %s\n", outputPath)

	return nil
}
