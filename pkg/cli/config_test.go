// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigDefaults(t *testing.T) {
	v, err := InitConfig("")
	require.NoError(t, err)

	cfg := GetConfig(v)
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.Equal(t, 4, cfg.Workers)
	assert.Zero(t, cfg.RateLimit)
}

func TestInitConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"bucket: stellar-backups\nregion: us-west-2\nworkers: 8\noutput-format: json\n",
	), 0o600))

	v, err := InitConfig(path)
	require.NoError(t, err)

	cfg := GetConfig(v)
	assert.Equal(t, "stellar-backups", cfg.Bucket)
	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestInitConfigEnvOverride(t *testing.T) {
	t.Setenv("ARCHIVECLI_ACCOUNT_NAME", "envaccount")

	v, err := InitConfig("")
	require.NoError(t, err)
	assert.Equal(t, "envaccount", GetConfig(v).AccountName)
}

func TestProviderSettingsOmitsEmpty(t *testing.T) {
	cfg := &Config{
		Bucket: "b",
		Region: "us-east-1",
	}
	settings := cfg.ProviderSettings()
	assert.Equal(t, map[string]string{
		"bucket": "b",
		"region": "us-east-1",
	}, settings)
}

func TestProviderSettingsAzure(t *testing.T) {
	cfg := &Config{
		AccountName:    "account",
		AccountKey:     "key",
		ContainerName:  "container",
		SubscriptionID: "sub",
		ResourceGroup:  "rg",
		UsePathStyle:   true,
	}
	settings := cfg.ProviderSettings()
	assert.Equal(t, "account", settings["accountName"])
	assert.Equal(t, "key", settings["accountKey"])
	assert.Equal(t, "container", settings["containerName"])
	assert.Equal(t, "sub", settings["subscriptionID"])
	assert.Equal(t, "rg", settings["resourceGroup"])
	assert.Equal(t, "true", settings["usePathStyle"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "aws ok",
			cfg:  Config{Provider: "aws", Bucket: "b", OutputFormat: "text"},
		},
		{
			name:    "aws missing bucket",
			cfg:     Config{Provider: "aws", OutputFormat: "text"},
			wantErr: ErrBucketRequired,
		},
		{
			name: "azure ok",
			cfg: Config{
				Provider: "azure", AccountName: "a", AccountKey: "k",
				ContainerName: "c", OutputFormat: "json",
			},
		},
		{
			name:    "azure missing credentials",
			cfg:     Config{Provider: "azure", ContainerName: "c", OutputFormat: "text"},
			wantErr: ErrAccountRequired,
		},
		{
			name:    "azure missing container",
			cfg:     Config{Provider: "azure", AccountName: "a", AccountKey: "k", OutputFormat: "text"},
			wantErr: ErrContainerRequired,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "gcs", OutputFormat: "text"},
			wantErr: ErrUnsupportedProvider,
		},
		{
			name:    "bad output format",
			cfg:     Config{Provider: "aws", Bucket: "b", OutputFormat: "xml"},
			wantErr: ErrUnsupportedOutputFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
