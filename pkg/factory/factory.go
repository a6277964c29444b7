// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

// Package factory creates tier-transition providers by name from flat
// string settings. Providers register themselves in init so adding one
// never touches the callers.
package factory

import (
	"context"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// ProviderCreator is a function that creates a provider from settings.
type ProviderCreator func(ctx context.Context, settings map[string]string) (tiering.Provider, error)

var providerRegistry = make(map[string]ProviderCreator)

// RegisterProvider registers a provider creator under a type name.
func RegisterProvider(providerType string, creator ProviderCreator) {
	providerRegistry[providerType] = creator
}

// NewProvider creates a provider of the given type.
func NewProvider(ctx context.Context, providerType string, settings map[string]string) (tiering.Provider, error) {
	creator, exists := providerRegistry[providerType]
	if !exists {
		return nil, ErrUnknownProvider
	}
	return creator(ctx, settings)
}

// Types returns the registered provider type names.
func Types() []string {
	types := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		types = append(types, name)
	}
	return types
}
