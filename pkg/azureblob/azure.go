// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

// Package azureblob implements the tier-transition provider contract
// for Azure Blob Storage. Azure supports direct tier mutation, so
// archive and restore are single-phase: Set Blob Tier does the move and
// the service rehydrates archived blobs in place.
package azureblob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-storage-blob-go/azblob"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

const defaultPageSize = 1000

// blobProperties is the slice of Get Blob Properties this provider
// reads.
type blobProperties struct {
	accessTier    string
	archiveStatus string
}

// Function variables to enable unit testing without real network I/O.
var (
	listSegmentFn = func(ctx context.Context, c azblob.ContainerURL, marker azblob.Marker, opts azblob.ListBlobsSegmentOptions) (*azblob.ListBlobsFlatSegmentResponse, error) {
		return c.ListBlobsFlatSegment(ctx, marker, opts)
	}
	setTierFn = func(ctx context.Context, b azblob.BlobURL, tier azblob.AccessTierType) error {
		_, err := b.SetTier(ctx, tier, azblob.LeaseAccessConditions{}, azblob.RehydratePriorityStandard)
		return err
	}
	setTagsFn = func(ctx context.Context, b azblob.BlobURL, tags azblob.BlobTagsMap) error {
		_, err := b.SetTags(ctx, nil, nil, nil, tags)
		return err
	}
	getPropertiesFn = func(ctx context.Context, b azblob.BlobURL) (blobProperties, error) {
		resp, err := b.GetProperties(ctx, azblob.BlobAccessConditions{}, azblob.ClientProvidedKeyOptions{})
		if err != nil {
			return blobProperties{}, err
		}
		return blobProperties{
			accessTier:    resp.AccessTier(),
			archiveStatus: resp.ArchiveStatus(),
		}, nil
	}
	uploadFn = func(ctx context.Context, r io.Reader, b azblob.BlockBlobURL) error {
		_, err := azblob.UploadStreamToBlockBlob(ctx, r, b, azblob.UploadStreamToBlockBlobOptions{})
		return err
	}
	downloadFn = func(ctx context.Context, b azblob.BlobURL) (io.ReadCloser, error) {
		resp, err := b.Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false, azblob.ClientProvidedKeyOptions{})
		if err != nil {
			return nil, err
		}
		return resp.Body(azblob.RetryReaderOptions{}), nil
	}
)

// Config carries the connection settings for one container.
type Config struct {
	AccountName   string
	AccountKey    string
	ContainerName string

	// Endpoint overrides the account URL, for Azurite and sovereign
	// clouds.
	Endpoint string

	// SubscriptionID and ResourceGroup enable the management-plane
	// lifecycle policy listing. Blob operations work without them.
	SubscriptionID string
	ResourceGroup  string

	// PageSize caps blobs per listing segment. Defaults to 1000.
	PageSize int
}

// Provider is the Azure Blob Storage implementation of tiering.Provider.
type Provider struct {
	container azblob.ContainerURL
	policies  policyReader
	pageSize  int32
}

// New builds a provider from shared key credentials.
func New(cfg Config) (*Provider, error) {
	if cfg.AccountName == "" || cfg.AccountKey == "" || cfg.ContainerName == "" {
		return nil, fmt.Errorf("%w: accountName, accountKey and containerName are required", tiering.ErrInvalidRequest)
	}

	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("shared key credential: %w", err)
	}

	pipeline := azblob.NewPipeline(credential, azblob.PipelineOptions{})

	raw := fmt.Sprintf("https://%s.blob.core.windows.net/%s", cfg.AccountName, cfg.ContainerName)
	if cfg.Endpoint != "" {
		raw = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.ContainerName)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("container url: %w", err)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	p := &Provider{
		container: azblob.NewContainerURL(*u, pipeline),
		pageSize:  int32(pageSize),
	}
	p.policies = newPolicyReader(cfg)
	return p, nil
}

// NewWithContainer wires an existing container URL, used by tests.
func NewWithContainer(container azblob.ContainerURL) *Provider {
	return &Provider{container: container, pageSize: defaultPageSize}
}

// Capabilities reports the direct-tier-mutation model.
func (p *Provider) Capabilities() tiering.Capabilities {
	return tiering.Capabilities{DirectTierChange: true}
}

// ListPage returns one page of the container listing under prefix. The
// continuation token is the service marker.
func (p *Provider) ListPage(ctx context.Context, prefix, token string) (*tiering.Page, error) {
	marker := azblob.Marker{}
	if token != "" {
		marker.Val = &token
	}

	resp, err := listSegmentFn(ctx, p.container, marker, azblob.ListBlobsSegmentOptions{
		Prefix:     prefix,
		MaxResults: p.pageSize,
	})
	if err != nil {
		return nil, mapError(err)
	}

	page := &tiering.Page{Objects: make([]tiering.ObjectHandle, 0, len(resp.Segment.BlobItems))}
	for _, item := range resp.Segment.BlobItems {
		page.Objects = append(page.Objects, tiering.ObjectHandle{
			Key:  item.Name,
			Tier: tierFromAccessTier(string(item.Properties.AccessTier)),
		})
	}
	if resp.NextMarker.NotDone() && resp.NextMarker.Val != nil {
		page.NextToken = *resp.NextMarker.Val
	}
	return page, nil
}

// GetTier reports the blob's access tier.
func (p *Provider) GetTier(ctx context.Context, key string) (tiering.Tier, error) {
	props, err := getPropertiesFn(ctx, p.container.NewBlobURL(key))
	if err != nil {
		return tiering.TierUnknown, mapError(err)
	}
	return tierFromAccessTier(props.accessTier), nil
}

// SetTag writes the tier tag used for auditing and lifecycle rule
// matching.
func (p *Provider) SetTag(ctx context.Context, key string, tier tiering.Tier) error {
	tags := azblob.BlobTagsMap{tiering.TagTierKey: string(tier)}
	return mapError(setTagsFn(ctx, p.container.NewBlobURL(key), tags))
}

// SetTier moves the blob to the given access tier in place.
func (p *Provider) SetTier(ctx context.Context, key string, tier tiering.Tier) error {
	access, err := accessTierFor(tier)
	if err != nil {
		return err
	}
	return mapError(setTierFn(ctx, p.container.NewBlobURL(key), access))
}

// StartRestore is unnecessary on Azure; SetTier back to hot starts the
// in-place rehydration.
func (p *Provider) StartRestore(ctx context.Context, key string, days int) error {
	return fmt.Errorf("%w: azure rehydrates in place via tier change", tiering.ErrNotSupported)
}

// RestoreStatus derives the rehydration phase from the blob properties:
// a pending archive status means the service is still rehydrating, an
// archive tier with no status means no rehydration was requested, and
// anything else means the blob already lives at a readable tier.
func (p *Provider) RestoreStatus(ctx context.Context, key string) (tiering.RestoreState, error) {
	props, err := getPropertiesFn(ctx, p.container.NewBlobURL(key))
	if err != nil {
		return tiering.RestoreNotStarted, mapError(err)
	}

	if strings.HasPrefix(strings.ToLower(props.archiveStatus), "rehydrate-pending") {
		return tiering.RestorePending, nil
	}
	if tierFromAccessTier(props.accessTier) == tiering.TierArchive {
		return tiering.RestoreNotStarted, nil
	}
	return tiering.RestorePermanentlyPromoted, nil
}

// Promote has no meaning on Azure; the rehydrated blob is already
// permanent.
func (p *Provider) Promote(ctx context.Context, key string) error {
	return fmt.Errorf("%w: azure restores are single-phase", tiering.ErrNotSupported)
}

// Download fetches one blob's contents.
func (p *Provider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := downloadFn(ctx, p.container.NewBlobURL(key))
	if err != nil {
		return nil, mapError(err)
	}
	return rc, nil
}

// Upload writes one blob.
func (p *Provider) Upload(ctx context.Context, key string, data io.Reader) error {
	return mapError(uploadFn(ctx, data, p.container.NewBlockBlobURL(key)))
}

func tierFromAccessTier(tier string) tiering.Tier {
	switch strings.ToLower(tier) {
	case "archive":
		return tiering.TierArchive
	case "hot", "cool", "cold":
		return tiering.TierHot
	default:
		return tiering.TierUnknown
	}
}

func accessTierFor(tier tiering.Tier) (azblob.AccessTierType, error) {
	switch tier {
	case tiering.TierHot:
		return azblob.AccessTierHot, nil
	case tiering.TierArchive:
		return azblob.AccessTierArchive, nil
	}
	return azblob.AccessTierNone, fmt.Errorf("%w: %q", tiering.ErrInvalidTier, tier)
}

// mapError folds storage errors into the provider-neutral sentinels the
// pipeline branches on.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var serr azblob.StorageError
	if !errors.As(err, &serr) {
		return err
	}

	switch serr.ServiceCode() {
	case azblob.ServiceCodeBlobNotFound, azblob.ServiceCodeContainerNotFound:
		return fmt.Errorf("%w: %s", tiering.ErrObjectNotFound, serr.ServiceCode())
	case azblob.ServiceCodeServerBusy:
		return fmt.Errorf("%w: %s", tiering.ErrThrottled, serr.ServiceCode())
	case azblob.ServiceCodeAuthenticationFailed, azblob.ServiceCodeInsufficientAccountPermissions:
		return fmt.Errorf("%w: %s", tiering.ErrPermissionDenied, serr.ServiceCode())
	}

	switch string(serr.ServiceCode()) {
	case "AuthorizationPermissionMismatch", "AuthorizationFailure":
		return fmt.Errorf("%w: %s", tiering.ErrPermissionDenied, serr.ServiceCode())
	case "BlobBeingRehydrated":
		return fmt.Errorf("%w: %s", tiering.ErrAlreadyInProgress, serr.ServiceCode())
	case "BlobArchived":
		return fmt.Errorf("%w: %s", tiering.ErrNotReady, serr.ServiceCode())
	}
	return err
}
