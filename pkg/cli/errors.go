// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package cli

import "errors"

var (
	// Configuration errors

	// ErrBucketRequired is returned when bucket is required but not set.
	ErrBucketRequired = errors.New("bucket is required for the aws provider")

	// ErrAccountRequired is returned when account credentials are required but not set.
	ErrAccountRequired = errors.New("account-name and account-key are required for the azure provider")

	// ErrContainerRequired is returned when container-name is required but not set.
	ErrContainerRequired = errors.New("container-name is required for the azure provider")

	// ErrUnsupportedProvider is returned when an unsupported provider is specified.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrUnsupportedOutputFormat is returned when an unsupported output format is specified.
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")

	// ErrPoliciesUnsupported is returned when the provider cannot list lifecycle policies.
	ErrPoliciesUnsupported = errors.New("provider does not expose lifecycle policies")
)
