// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package factory

import (
	"context"
	"strconv"

	"github.com/stellarcyber/support-tools/pkg/s3blob"
	"github.com/stellarcyber/support-tools/pkg/tiering"
)

func init() {
	RegisterProvider("aws", func(ctx context.Context, settings map[string]string) (tiering.Provider, error) {
		pageSize, _ := strconv.Atoi(settings["pageSize"]) //nolint:errcheck // zero falls back to the default
		return s3blob.New(ctx, s3blob.Config{
			Bucket:          settings["bucket"],
			Region:          settings["region"],
			Endpoint:        settings["endpoint"],
			AccessKeyID:     settings["accessKeyID"],
			SecretAccessKey: settings["secretAccessKey"],
			UsePathStyle:    settings["usePathStyle"] == "true",
			PageSize:        pageSize,
		})
	})
}
