// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package azureblob

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// ManagementPoliciesClient is the slice of the storage management plane
// the policy listing calls. Tests substitute a mock.
type ManagementPoliciesClient interface {
	Get(ctx context.Context, resourceGroupName string, accountName string, managementPolicyName armstorage.ManagementPolicyName, options *armstorage.ManagementPoliciesClientGetOptions) (armstorage.ManagementPoliciesClientGetResponse, error)
}

// policyReader lazily builds the management-plane client; blob
// operations never depend on it.
type policyReader struct {
	client         ManagementPoliciesClient
	subscriptionID string
	resourceGroup  string
	accountName    string
}

func newPolicyReader(cfg Config) policyReader {
	return policyReader{
		subscriptionID: cfg.SubscriptionID,
		resourceGroup:  cfg.ResourceGroup,
		accountName:    cfg.AccountName,
	}
}

// SetPolicyClient injects a management client, used by tests.
func (p *Provider) SetPolicyClient(client ManagementPoliciesClient, resourceGroup, accountName string) {
	p.policies.client = client
	p.policies.resourceGroup = resourceGroup
	p.policies.accountName = accountName
}

// LifecyclePolicies lists the account's lifecycle management rules. The
// management plane authenticates through the default Azure credential
// chain and needs subscriptionID and resourceGroup configured.
func (p *Provider) LifecyclePolicies(ctx context.Context) ([]tiering.LifecyclePolicy, error) {
	if p.policies.client == nil {
		if p.policies.subscriptionID == "" || p.policies.resourceGroup == "" {
			return nil, fmt.Errorf("%w: subscriptionID and resourceGroup required for lifecycle policies", tiering.ErrNotSupported)
		}
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("azure credential: %w", err)
		}
		factory, err := armstorage.NewClientFactory(p.policies.subscriptionID, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("management client: %w", err)
		}
		p.policies.client = factory.NewManagementPoliciesClient()
	}

	resp, err := p.policies.client.Get(ctx, p.policies.resourceGroup, p.policies.accountName, armstorage.ManagementPolicyNameDefault, nil)
	if err != nil {
		// An account with no policy returns a management-plane 404.
		if strings.Contains(err.Error(), "ManagementPolicyNotFound") {
			return nil, nil
		}
		return nil, err
	}

	if resp.Properties == nil || resp.Properties.Policy == nil {
		return nil, nil
	}

	var policies []tiering.LifecyclePolicy
	for _, rule := range resp.Properties.Policy.Rules {
		if rule == nil || rule.Definition == nil {
			continue
		}
		policy := tiering.LifecyclePolicy{}
		if rule.Name != nil {
			policy.ID = *rule.Name
		}
		if f := rule.Definition.Filters; f != nil && len(f.PrefixMatch) > 0 && f.PrefixMatch[0] != nil {
			policy.Prefix = *f.PrefixMatch[0]
		}
		if a := rule.Definition.Actions; a != nil && a.BaseBlob != nil {
			switch {
			case a.BaseBlob.TierToArchive != nil:
				policy.Action = "transition:archive"
				policy.RetentionDays = daysAfter(a.BaseBlob.TierToArchive)
			case a.BaseBlob.TierToCool != nil:
				policy.Action = "transition:cool"
				policy.RetentionDays = daysAfter(a.BaseBlob.TierToCool)
			case a.BaseBlob.Delete != nil:
				policy.Action = "expire"
				policy.RetentionDays = daysAfter(a.BaseBlob.Delete)
			}
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

func daysAfter(d *armstorage.DateAfterModification) int {
	if d == nil || d.DaysAfterModificationGreaterThan == nil {
		return 0
	}
	return int(*d.DaysAfterModificationGreaterThan)
}
