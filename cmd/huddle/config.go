package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getahuddle/huddle/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify huddle configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/huddle/config.yaml
Project-specific overrides can be placed in .huddle.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s (from %s)\n",
		config.MaskAPIKey(cfg.Anthropic.APIKey), config.GetAPIKeySource(cfg))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("google.places_api_key: %s\n", config.MaskAPIKey(cfg.Google.PlacesAPIKey))
	fmt.Printf("caldav.endpoint: %s\n", cfg.CalDAV.Endpoint)
	fmt.Printf("cache.backend: %s\n", cfg.Cache.Backend)
	fmt.Printf("server.addr: %s\n", cfg.Server.Addr)
	fmt.Printf("scheduler.policy_path: %s\n", cfg.Scheduler.PolicyPath)
	fmt.Printf("scheduler.horizon_days: %d\n", cfg.Scheduler.HorizonDays)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "google.places_api_key":
		return config.MaskAPIKey(cfg.Google.PlacesAPIKey), nil
	case "caldav.endpoint":
		return cfg.CalDAV.Endpoint, nil
	case "cache.backend":
		return cfg.Cache.Backend, nil
	case "server.addr":
		return cfg.Server.Addr, nil
	case "scheduler.policy_path":
		return cfg.Scheduler.PolicyPath, nil
	case "scheduler.horizon_days":
		return strconv.Itoa(cfg.Scheduler.HorizonDays), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "google.places_api_key":
		cfg.Google.PlacesAPIKey = value
	case "caldav.endpoint":
		cfg.CalDAV.Endpoint = value
	case "cache.backend":
		switch value {
		case "memory", "sqlite", "postgres":
			cfg.Cache.Backend = value
		default:
			return fmt.Errorf("unknown cache backend %q (want memory, sqlite, or postgres)", value)
		}
	case "server.addr":
		cfg.Server.Addr = value
	case "scheduler.policy_path":
		cfg.Scheduler.PolicyPath = value
	case "scheduler.horizon_days":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid horizon days: %s", value)
		}
		cfg.Scheduler.HorizonDays = n
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
