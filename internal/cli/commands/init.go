package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/archgate/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize archgate in a project",
		Long: `Write a starter archgate.yaml and policy.yaml.

Use --example to create a working demo: a three-root policy and a compiled
artifact tree with dependency manifests, ready for 'archgate check'.`,
		Example: `  # Initialize in current directory
  archgate init

  # Initialize with a working example
  archgate init --example

  # Initialize in a new directory
  archgate init my-project --example

  # Force overwrite existing config
  archgate init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			mode := output.ModeAuto
			if cfg, err := getConfig(cmd); err == nil {
				mode = output.Mode(cfg.OutputFormat)
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			template := "default"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create a working example with a policy and artifacts")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "archgate.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("archgate.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles(template)
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}
	if len(groups["artifacts"]) > 0 {
		r.Println("")
		r.Header(2, "Artifacts")
		for _, f := range groups["artifacts"] {
			r.StatusLine(f, "success", "")
		}
	}

	r.Println("")
	r.Success("archgate initialized!")
	r.Println("")
	r.Println("Next steps:")
	if template == "example" {
		r.Println("  archgate check     Run the conformance test")
		r.Println("  archgate explain com.acme.billing")
		r.Println("  archgate layers    Show how the roots stack up")
	} else {
		r.Println("  1. List your own namespace and roots in policy.yaml")
		r.Println("  2. Point provider.dir in archgate.yaml at your build output")
		r.Println("  3. Run 'archgate lint', then 'archgate check'")
	}

	return nil
}
