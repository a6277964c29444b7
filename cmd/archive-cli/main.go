// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stellarcyber/support-tools/pkg/cli"
	"github.com/stellarcyber/support-tools/pkg/indexes"
	"github.com/stellarcyber/support-tools/pkg/tiering"
	"github.com/stellarcyber/support-tools/pkg/version"
)

var (
	cfgFile      string
	viperConfig  *viper.Viper
	globalConfig *cli.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "archive-cli",
	Version: version.Get(),
	Short:   "Move index data between hot and archive storage tiers",
	Long: `archive-cli applies storage tier transitions to the index data a
deployment keeps in object storage.

Providers:
  - aws   : AWS S3. Archiving happens through bucket lifecycle rules
            keyed on object tags; restores are two-phase (restore, then
            sync once the temporary copies are ready).
  - azure : Azure Blob Storage. Tiers change directly via Set Blob Tier;
            restores rehydrate in place.

Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (ARCHIVECLI_*)
  - Configuration file (~/.archive-cli.yaml or ./.archive-cli.yaml)
  - Default values (lowest priority)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		viperConfig, err = cli.InitConfig(cfgFile)
		if err != nil {
			return err
		}

		if err := viperConfig.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}

		globalConfig = cli.GetConfig(viperConfig)
		return nil
	},
}

func outputFormat() cli.OutputFormat {
	return cli.OutputFormat(globalConfig.OutputFormat)
}

func fail(err error) error {
	fmt.Fprint(os.Stderr, cli.FormatError(err, outputFormat()))
	return err
}

// runTransition builds the request from the command flags and executes
// one batch, printing the report and exiting nonzero when any object
// failed.
func runTransition(cmd *cobra.Command, provider string, op tiering.Operation) error {
	globalConfig.Provider = provider

	req, err := buildRequest(cmd, op)
	if err != nil {
		return fail(err)
	}

	cmdCtx, err := cli.NewCommandContext(cmd.Context(), globalConfig)
	if err != nil {
		return fail(err)
	}

	report, err := cmdCtx.TransitionCommand(cmd.Context(), req)
	if err != nil {
		return fail(err)
	}

	fmt.Fprint(os.Stdout, cli.FormatReport(report, outputFormat()))
	if err := report.Err(); err != nil {
		return err
	}
	return nil
}

func buildRequest(cmd *cobra.Command, op tiering.Operation) (*tiering.TransitionRequest, error) {
	flags := cmd.Flags()

	//nolint:errcheck // flags are validated by cobra
	ids, _ := flags.GetStringSlice("index")
	includedPrefix, _ := flags.GetString("included-prefix")
	excluded, _ := flags.GetStringSlice("excluded-prefix")
	srcTier, _ := flags.GetString("src-tier")
	dstTier, _ := flags.GetString("dst-tier")
	force, _ := flags.GetBool("force")
	restoreDays, _ := flags.GetInt("restore-days")
	noExcluded, _ := flags.GetBool("no-excluded-indices")

	var included []string
	if len(ids) > 0 {
		prefixes, err := indexes.Resolve(ids)
		if err != nil {
			return nil, err
		}
		included = prefixes
	} else {
		included = []string{includedPrefix}
	}

	req := &tiering.TransitionRequest{
		IncludedPrefixes: included,
		ExcludedPrefixes: excluded,
		Operation:        op,
		Force:            force,
		RestoreDays:      restoreDays,
		UpdateExclusions: !noExcluded,
	}

	var err error
	if srcTier != "" {
		req.SourceTier, err = tiering.ParseTier(srcTier)
		if err != nil {
			return nil, err
		}
	}
	if dstTier != "" {
		req.DestinationTier, err = tiering.ParseTier(dstTier)
		if err != nil {
			return nil, err
		}
	}

	// Operations imply their tiers unless overridden.
	switch op {
	case tiering.OpTag:
		if req.SourceTier == tiering.TierUnknown && !force {
			switch req.DestinationTier {
			case tiering.TierArchive:
				req.SourceTier = tiering.TierHot
			case tiering.TierHot:
				req.SourceTier = tiering.TierArchive
			}
		}
	case tiering.OpArchive:
		if req.SourceTier == tiering.TierUnknown && !force {
			req.SourceTier = tiering.TierHot
		}
		req.DestinationTier = tiering.TierArchive
	case tiering.OpRestore, tiering.OpSync:
		if req.SourceTier == tiering.TierUnknown && !force {
			req.SourceTier = tiering.TierArchive
		}
		req.DestinationTier = tiering.TierHot
	}

	return req, nil
}

func addTransitionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("index", nil, "index identifier(s) to operate on; resolved to key prefixes")
	cmd.Flags().String("included-prefix", indexes.Root+"/", "key prefix to scan when no --index is given")
	cmd.Flags().StringSlice("excluded-prefix", nil, "key prefix(es) to exclude from the batch")
	cmd.Flags().String("src-tier", "", "only transition objects currently at this tier (hot, archive)")
	cmd.Flags().Bool("force", false, "transition regardless of the current tier")
	cmd.Flags().Bool("no-excluded-indices", false, "ignore and do not update the excluded indices list")
}

func newTagCmd(provider string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Set the tier tag on matching objects",
		Long: `Set the tier intent tag on every object matching the filters.
On AWS the bucket lifecycle rules act on the tag; on Azure the tag
records intent alongside direct tier changes.`,
		Example: `  archive-cli ` + provider + ` tag --index aella-syslog-1624488492158- --dst-tier archive
  archive-cli ` + provider + ` tag --dst-tier hot --src-tier archive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, provider, tiering.OpTag)
		},
	}
	addTransitionFlags(cmd)
	cmd.Flags().String("dst-tier", "", "tier to tag the objects with (hot, archive)")
	_ = cmd.MarkFlagRequired("dst-tier") //nolint:errcheck // flag exists
	return cmd
}

func newArchiveCmd(provider string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move matching objects to the archive tier",
		Long: `Move every matching object to the archive tier directly. Only
available on providers with direct tier mutation; on AWS use tag and
let the bucket lifecycle rules do the move.`,
		Example: `  archive-cli ` + provider + ` archive --index aella-syslog-1624488492158-`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, provider, tiering.OpArchive)
		},
	}
	addTransitionFlags(cmd)
	return cmd
}

func newRestoreCmd(provider string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Bring archived objects back toward the hot tier",
		Long: `Start restoring every matching archived object. On Azure the blob
rehydrates in place. On AWS this requests temporary restored copies;
run sync once they are ready to make the promotion permanent.`,
		Example: `  archive-cli ` + provider + ` restore --index aella-syslog-1624488492158-
  archive-cli aws restore --index aella-syslog-1624488492158- --restore-days 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, provider, tiering.OpRestore)
		},
	}
	addTransitionFlags(cmd)
	cmd.Flags().Int("restore-days", 10, "days the temporary restored copies stay readable")
	return cmd
}

func newSyncCmd(provider string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Promote restored copies to permanent hot objects",
		Long: `Check every matching object's restore state and promote the ones
whose temporary copies are ready. Objects still restoring are reported
not-ready; re-run until everything converges. Idempotent.`,
		Example: `  archive-cli aws sync --index aella-syslog-1624488492158-`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, provider, tiering.OpSync)
		},
	}
	addTransitionFlags(cmd)
	return cmd
}

func newGetPrefixCmd(provider string) *cobra.Command {
	return &cobra.Command{
		Use:     "get-prefix <index-id> [index-id...]",
		Short:   "Resolve index identifiers to object key prefixes",
		Example: `  archive-cli ` + provider + ` get-prefix aella-syslog-1624488492158-`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			globalConfig.Provider = provider
			prefixes, err := indexes.Resolve(args)
			if err != nil {
				return fail(err)
			}
			fmt.Fprint(os.Stdout, cli.FormatStrings("prefixes", prefixes, outputFormat()))
			return nil
		},
	}
}

func newPolicyCmd(provider string) *cobra.Command {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect lifecycle policies",
	}
	policyCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the lifecycle policies acting on the container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			globalConfig.Provider = provider
			cmdCtx, err := cli.NewCommandContext(cmd.Context(), globalConfig)
			if err != nil {
				return fail(err)
			}
			policies, err := cmdCtx.ListPoliciesCommand(cmd.Context())
			if err != nil {
				return fail(err)
			}
			fmt.Fprint(os.Stdout, cli.FormatPolicies(policies, outputFormat()))
			return nil
		},
	})
	return policyCmd
}

func newExclusionsCmd(provider string) *cobra.Command {
	exclusionsCmd := &cobra.Command{
		Use:   "exclusions",
		Short: "Inspect the excluded indices list",
	}
	exclusionsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the index IDs excluded from archive tagging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			globalConfig.Provider = provider
			cmdCtx, err := cli.NewCommandContext(cmd.Context(), globalConfig)
			if err != nil {
				return fail(err)
			}
			ids, err := cmdCtx.ListExclusionsCommand(cmd.Context())
			if err != nil {
				return fail(err)
			}
			fmt.Fprint(os.Stdout, cli.FormatStrings("excluded indices", ids, outputFormat()))
			return nil
		},
	})
	return exclusionsCmd
}

func newProviderCmd(provider, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   provider,
		Short: short,
	}
	cmd.AddCommand(newTagCmd(provider))
	cmd.AddCommand(newArchiveCmd(provider))
	cmd.AddCommand(newRestoreCmd(provider))
	cmd.AddCommand(newSyncCmd(provider))
	cmd.AddCommand(newGetPrefixCmd(provider))
	cmd.AddCommand(newPolicyCmd(provider))
	cmd.AddCommand(newExclusionsCmd(provider))
	return cmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.archive-cli.yaml)")
	rootCmd.PersistentFlags().Bool("trace", false, "enable debug logging")
	rootCmd.PersistentFlags().StringP("output-format", "o", "text", "output format (text, json, table)")
	rootCmd.PersistentFlags().Float64("rate-limit", 0, "max provider calls per second (0 = unlimited)")
	rootCmd.PersistentFlags().Int("workers", 4, "number of concurrent per-object transitions")
	rootCmd.PersistentFlags().Int("page-size", 0, "max objects per listing call (0 = provider default)")

	// AWS connection settings
	rootCmd.PersistentFlags().String("bucket", "", "S3 bucket name")
	rootCmd.PersistentFlags().String("region", "", "AWS region")
	rootCmd.PersistentFlags().String("endpoint", "", "custom endpoint URL (S3-compatible stores, Azurite)")
	rootCmd.PersistentFlags().String("access-key-id", "", "AWS access key ID (default: credential chain)")
	rootCmd.PersistentFlags().String("secret-access-key", "", "AWS secret access key")
	rootCmd.PersistentFlags().Bool("use-path-style", false, "use path-style S3 addressing")

	// Azure connection settings
	rootCmd.PersistentFlags().String("account-name", "", "Azure storage account name")
	rootCmd.PersistentFlags().String("account-key", "", "Azure storage account key")
	rootCmd.PersistentFlags().String("container-name", "", "Azure blob container name")
	rootCmd.PersistentFlags().String("subscription-id", "", "Azure subscription ID (for lifecycle policies)")
	rootCmd.PersistentFlags().String("resource-group", "", "Azure resource group (for lifecycle policies)")

	rootCmd.AddCommand(newProviderCmd("aws", "Operate on an AWS S3 bucket"))
	rootCmd.AddCommand(newProviderCmd("azure", "Operate on an Azure Blob Storage container"))
}
