package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/itpctl/internal/config"
	"github.com/muurk/itpctl/internal/ui"
)

var configForce bool

var (
	linkPort        string
	linkSource      string
	linkAssociation string
	linkNickname    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the itpctl configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Example: `  itpctl config init
  itpctl config init --force --config ./itpctl.yaml`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configSetLinkCmd = &cobra.Command{
	Use:   "set-link <name>",
	Short: "Add or update a named serial link",
	Example: `  # The heat pump side of a bridge
  itpctl config set-link heatpump --port /dev/ttyUSB0 --source heatpump

  # A second adapter on the thermostat side
  itpctl config set-link wall --port /dev/ttyUSB1 --source thermostat --association thermostat`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetLink,
}

var configRemoveLinkCmd = &cobra.Command{
	Use:   "remove-link <name>",
	Short: "Remove a named serial link",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigRemoveLink,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configSetLinkCmd.Flags().StringVar(&linkPort, "port", "", "Serial port, e.g. /dev/ttyUSB0")
	configSetLinkCmd.Flags().StringVar(&linkSource, "source", "", "heatpump or thermostat")
	configSetLinkCmd.Flags().StringVar(&linkAssociation, "association", "", "bridge or thermostat")
	configSetLinkCmd.Flags().StringVar(&linkNickname, "nickname", "", "Free-form description")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetLinkCmd)
	configCmd.AddCommand(configRemoveLinkCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}

	cfg, err := config.CreateDefaultConfig(path, configForce)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), ui.NewFailureResult("Config not written", err,
			"Use --force to overwrite the existing file").String())
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.NewSuccessResult("Config written",
		ui.Param{Key: "Path", Value: path},
		ui.Param{Key: "Links", Value: fmt.Sprint(len(cfg.Links))},
	).String())
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigSetLink(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := args[0]
	flags := cmd.Flags()
	link := cfg.EnsureLink(name)
	if flags.Changed("port") {
		link.Port = linkPort
	}
	if flags.Changed("source") {
		link.Source = linkSource
	}
	if flags.Changed("association") {
		link.Association = linkAssociation
	}
	if flags.Changed("nickname") {
		link.Nickname = linkNickname
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.NewSuccessResult("Link saved",
		ui.Param{Key: "Name", Value: name},
		ui.Param{Key: "Port", Value: link.Port},
		ui.Param{Key: "Source", Value: link.Source},
		ui.Param{Key: "Links", Value: fmt.Sprint(linkNames(cfg))},
	).String())
	return nil
}

func runConfigRemoveLink(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.GetLink(args[0]) == nil {
		return fmt.Errorf("link %q is not configured", args[0])
	}
	delete(cfg.Links, args[0])
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.NewSuccessResult("Link removed",
		ui.Param{Key: "Name", Value: args[0]}).String())
	return nil
}

func linkNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Links))
	for name := range cfg.Links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
