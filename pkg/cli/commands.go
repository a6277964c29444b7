// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

// Package cli wires configuration, providers and the transition
// pipeline behind the archive-cli commands.
package cli

import (
	"context"
	"log/slog"

	"github.com/stellarcyber/support-tools/pkg/adapters"
	"github.com/stellarcyber/support-tools/pkg/factory"
	"github.com/stellarcyber/support-tools/pkg/indexes"
	"github.com/stellarcyber/support-tools/pkg/tiering"
	"github.com/stellarcyber/support-tools/pkg/transition"
)

// CommandContext holds the wiring for executing commands.
type CommandContext struct {
	Config   *Config
	Provider tiering.Provider
	Logger   adapters.Logger
}

// NewCommandContext validates the configuration and builds the provider.
func NewCommandContext(ctx context.Context, cfg *Config) (*CommandContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Trace {
		level = slog.LevelDebug
	}
	logger := adapters.NewLogger(level)

	provider, err := factory.NewProvider(ctx, cfg.Provider, cfg.ProviderSettings())
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:   cfg,
		Provider: provider,
		Logger:   logger,
	}, nil
}

// TransitionCommand runs one tier transition batch.
func (c *CommandContext) TransitionCommand(ctx context.Context, req *tiering.TransitionRequest) (*tiering.Report, error) {
	orch := transition.New(c.Provider, transition.Config{
		Workers:   c.Config.Workers,
		RateLimit: c.Config.RateLimit,
		Logger:    c.Logger,
	})
	return orch.Run(ctx, req)
}

// GetPrefixCommand resolves index identifiers to object key prefixes.
// Pure computation; no provider calls.
func (c *CommandContext) GetPrefixCommand(ids []string) ([]string, error) {
	return indexes.Resolve(ids)
}

// ListPoliciesCommand lists the provider's lifecycle policies.
func (c *CommandContext) ListPoliciesCommand(ctx context.Context) ([]tiering.LifecyclePolicy, error) {
	viewer, ok := c.Provider.(tiering.PolicyViewer)
	if !ok {
		return nil, ErrPoliciesUnsupported
	}
	return viewer.LifecyclePolicies(ctx)
}

// ListExclusionsCommand returns the currently excluded index IDs.
func (c *CommandContext) ListExclusionsCommand(ctx context.Context) ([]string, error) {
	list, err := indexes.LoadExclusions(ctx, c.Provider)
	if err != nil {
		return nil, err
	}
	return list.IDs(), nil
}
