// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the CLI configuration settings.
type Config struct {
	Provider     string
	OutputFormat string
	Trace        bool

	// Transition tuning
	Workers   int
	RateLimit float64
	PageSize  int

	// AWS settings
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool

	// Azure settings
	AccountName    string
	AccountKey     string
	ContainerName  string
	SubscriptionID string
	ResourceGroup  string
}

// InitConfig initializes the configuration using Viper.
// Configuration priority: flags > env vars > config file > defaults.
func InitConfig(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("output-format", "text")
	v.SetDefault("workers", 4)
	v.SetDefault("rate-limit", 0.0)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".archive-cli")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ARCHIVECLI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return v, nil
}

// GetConfig extracts the configuration from Viper into a Config struct.
func GetConfig(v *viper.Viper) *Config {
	return &Config{
		Provider:        v.GetString("provider"),
		OutputFormat:    v.GetString("output-format"),
		Trace:           v.GetBool("trace"),
		Workers:         v.GetInt("workers"),
		RateLimit:       v.GetFloat64("rate-limit"),
		PageSize:        v.GetInt("page-size"),
		Bucket:          v.GetString("bucket"),
		Region:          v.GetString("region"),
		Endpoint:        v.GetString("endpoint"),
		AccessKeyID:     v.GetString("access-key-id"),
		SecretAccessKey: v.GetString("secret-access-key"),
		UsePathStyle:    v.GetBool("use-path-style"),
		AccountName:     v.GetString("account-name"),
		AccountKey:      v.GetString("account-key"),
		ContainerName:   v.GetString("container-name"),
		SubscriptionID:  v.GetString("subscription-id"),
		ResourceGroup:   v.GetString("resource-group"),
	}
}

// ProviderSettings converts Config to provider settings.
func (c *Config) ProviderSettings() map[string]string {
	settings := make(map[string]string)

	if c.Bucket != "" {
		settings["bucket"] = c.Bucket
	}
	if c.Region != "" {
		settings["region"] = c.Region
	}
	if c.Endpoint != "" {
		settings["endpoint"] = c.Endpoint
	}
	if c.AccessKeyID != "" {
		settings["accessKeyID"] = c.AccessKeyID
	}
	if c.SecretAccessKey != "" {
		settings["secretAccessKey"] = c.SecretAccessKey
	}
	if c.UsePathStyle {
		settings["usePathStyle"] = "true"
	}
	if c.AccountName != "" {
		settings["accountName"] = c.AccountName
	}
	if c.AccountKey != "" {
		settings["accountKey"] = c.AccountKey
	}
	if c.ContainerName != "" {
		settings["containerName"] = c.ContainerName
	}
	if c.SubscriptionID != "" {
		settings["subscriptionID"] = c.SubscriptionID
	}
	if c.ResourceGroup != "" {
		settings["resourceGroup"] = c.ResourceGroup
	}
	if c.PageSize > 0 {
		settings["pageSize"] = strconv.Itoa(c.PageSize)
	}

	return settings
}

// Validate checks that the settings required by the selected provider
// are present.
func (c *Config) Validate() error {
	switch c.Provider {
	case "aws":
		if c.Bucket == "" {
			return ErrBucketRequired
		}
	case "azure":
		if c.AccountName == "" || c.AccountKey == "" {
			return ErrAccountRequired
		}
		if c.ContainerName == "" {
			return ErrContainerRequired
		}
	default:
		return ErrUnsupportedProvider
	}

	switch OutputFormat(c.OutputFormat) {
	case FormatText, FormatJSON, FormatTable:
	default:
		return ErrUnsupportedOutputFormat
	}
	return nil
}
