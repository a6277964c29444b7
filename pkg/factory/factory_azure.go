// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package factory

import (
	"context"
	"strconv"

	"github.com/stellarcyber/support-tools/pkg/azureblob"
	"github.com/stellarcyber/support-tools/pkg/tiering"
)

func init() {
	RegisterProvider("azure", func(ctx context.Context, settings map[string]string) (tiering.Provider, error) {
		pageSize, _ := strconv.Atoi(settings["pageSize"]) //nolint:errcheck // zero falls back to the default
		return azureblob.New(azureblob.Config{
			AccountName:    settings["accountName"],
			AccountKey:     settings["accountKey"],
			ContainerName:  settings["containerName"],
			Endpoint:       settings["endpoint"],
			SubscriptionID: settings["subscriptionID"],
			ResourceGroup:  settings["resourceGroup"],
			PageSize:       pageSize,
		})
	})
}
