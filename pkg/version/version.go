// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package version

// Version is the application version.
// This should be set at build time using:
//
//	go build -ldflags "-X github.com/stellarcyber/support-tools/pkg/version.Version=1.0.0"
var Version = "0.1.0-dev" // default version if not set at build time

// Get returns the application version string.
// The version can be overridden at build time using ldflags.
func Get() string {
	return Version
}
