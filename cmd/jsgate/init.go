package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a jsgate configuration file",
		Long: `Generate a documented jsgate configuration file with sensible defaults.

By default, creates jsgate.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create jsgate.yaml in current directory
  jsgate init

  # Custom output path
  jsgate init --config tools/jsgate.yaml

  # Overwrite existing file
  jsgate init --force

  # Generate a config holding only the gate section
  jsgate init --minimal

  # Interactive setup wizard
  jsgate init --interactive
  jsgate init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with the gate section only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	opts := config.DefaultTemplateOptions()
	if interactive {
		var err error
		opts, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal && !interactive {
		content = config.GetMinimalConfigTemplate()
	} else {
		cfg, err := config.BuildConfig(opts)
		if err != nil {
			return fmt.Errorf("failed to build config: %w", err)
		}
		content, err = config.RenderConfig(cfg, true)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintln(out, "\nAdd 'jsgate check' to your pre-commit hook to gate commits.")

	return nil
}

type choice[T any] struct {
	Label       string
	Description string
	Value       T
}

func selectChoice[T any](label string, items []choice[T]) (T, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		var zero T
		return zero, err
	}
	return items[idx].Value, nil
}

func runInteractiveSetup(defaultConfigPath string) (config.TemplateOptions, string, error) {
	opts := config.DefaultTemplateOptions()

	fmt.Println()
	fmt.Println("jsgate Configuration Setup")
	fmt.Println("==========================")
	fmt.Println()

	projectType, err := selectChoice("What type of project is this?", []choice[config.ProjectType]{
		{"Generic JavaScript/TypeScript", "", config.ProjectTypeGeneric},
		{"React/Next.js", "", config.ProjectTypeReact},
		{"Vue/Nuxt", "", config.ProjectTypeVue},
		{"Node.js Backend", "", config.ProjectTypeNodeBackend},
	})
	if err != nil {
		return opts, "", fmt.Errorf("project selection cancelled: %w", err)
	}
	opts.ProjectType = projectType

	strictness, err := selectChoice("How strict should the gate be?", []choice[config.Strictness]{
		{"Standard (recommended)", "- balanced rule thresholds", config.StrictnessStandard},
		{"Relaxed", "- only medium severity and above", config.StrictnessRelaxed},
		{"Strict", "- low thresholds, every file must be clean", config.StrictnessStrict},
	})
	if err != nil {
		return opts, "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	opts.Strictness = strictness
	preset := config.GetStrictnessPresets()[strictness]

	mode, err := selectChoice("How should modified files be evaluated?", []choice[string]{
		{"Preset default", "- " + preset.Mode, ""},
		{"Progressive", "- fail only when a rule's count grows", "progressive"},
		{"Strict", "- fail on any violation", "strict"},
	})
	if err != nil {
		return opts, "", fmt.Errorf("mode selection cancelled: %w", err)
	}
	opts.Mode = mode

	capPrompt := promptui.Prompt{
		Label:   "Maximum violations listed per file (0 = no cap)",
		Default: strconv.Itoa(preset.MaxViolations),
		Validate: func(input string) error {
			n, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil || n < 0 {
				return errors.New("enter a number >= 0")
			}
			return nil
		},
	}
	capInput, err := capPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("cap input cancelled: %w", err)
	}
	opts.MaxViolations, _ = strconv.Atoi(strings.TrimSpace(capInput))

	bypassPrompt := promptui.Prompt{
		Label:     "Allow an emergency bypass from the commit message",
		IsConfirm: true,
	}
	if _, err := bypassPrompt.Run(); err == nil {
		opts.AllowEmergencyBypass = true
	} else if !errors.Is(err, promptui.ErrAbort) {
		return opts, "", fmt.Errorf("bypass input cancelled: %w", err)
	}

	if opts.AllowEmergencyBypass {
		prefixPrompt := promptui.Prompt{
			Label:   "Bypass prefix",
			Default: config.DefaultEmergencyPrefix,
		}
		prefix, err := prefixPrompt.Run()
		if err != nil {
			return opts, "", fmt.Errorf("prefix input cancelled: %w", err)
		}
		if strings.TrimSpace(prefix) != "" {
			opts.EmergencyPrefix = strings.TrimSpace(prefix)
		}
	}

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}
	outputPath, err := outputPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	return opts, outputPath, nil
}
