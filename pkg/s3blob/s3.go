// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

// Package s3blob implements the tier-transition provider contract for
// AWS S3. S3 offers no direct tier mutation, so the provider follows the
// tag-and-policy model: tags drive bucket lifecycle rules for
// archiving, and restores are two-phase (temporary copy, then a
// self-copy promote back to STANDARD).
package s3blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

const defaultPageSize = 1000

// Client is the slice of the S3 API this provider calls. *s3.Client
// satisfies it; tests substitute a mock.
type Client interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutObjectTagging(ctx context.Context, params *s3.PutObjectTaggingInput, optFns ...func(*s3.Options)) (*s3.PutObjectTaggingOutput, error)
	RestoreObject(ctx context.Context, params *s3.RestoreObjectInput, optFns ...func(*s3.Options)) (*s3.RestoreObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
}

// Config carries the connection settings for one bucket.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool

	// PageSize caps keys per listing call. Defaults to 1000.
	PageSize int
}

// Provider is the S3 implementation of tiering.Provider.
type Provider struct {
	client   Client
	bucket   string
	pageSize int32
}

// New builds a provider from the default AWS credential chain, with
// optional static credentials and a custom endpoint for S3-compatible
// stores.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", tiering.ErrInvalidRequest)
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Provider{client: client, bucket: cfg.Bucket, pageSize: int32(pageSize)}, nil
}

// NewWithClient wires an existing client, used by tests.
func NewWithClient(client Client, bucket string) *Provider {
	return &Provider{client: client, bucket: bucket, pageSize: defaultPageSize}
}

// Capabilities reports the tag-and-policy model.
func (p *Provider) Capabilities() tiering.Capabilities {
	return tiering.Capabilities{RequiresPromote: true}
}

// ListPage returns one page of the bucket listing under prefix.
func (p *Provider) ListPage(ctx context.Context, prefix, token string) (*tiering.Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(p.pageSize),
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	out, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	page := &tiering.Page{Objects: make([]tiering.ObjectHandle, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, tiering.ObjectHandle{
			Key:  aws.ToString(obj.Key),
			Tier: tierFromStorageClass(string(obj.StorageClass)),
		})
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// GetTier reports the effective tier from the object's storage class.
func (p *Provider) GetTier(ctx context.Context, key string) (tiering.Tier, error) {
	out, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return tiering.TierUnknown, mapError(err)
	}
	// HeadObject omits the storage class for STANDARD objects.
	if out.StorageClass == "" {
		return tiering.TierHot, nil
	}
	return tierFromStorageClass(string(out.StorageClass)), nil
}

// SetTag writes the tier tag the bucket lifecycle rules key on.
func (p *Provider) SetTag(ctx context.Context, key string, tier tiering.Tier) error {
	_, err := p.client.PutObjectTagging(ctx, &s3.PutObjectTaggingInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Tagging: &types.Tagging{
			TagSet: []types.Tag{{
				Key:   aws.String(tiering.TagTierKey),
				Value: aws.String(string(tier)),
			}},
		},
	})
	return mapError(err)
}

// SetTier is not available on S3; storage class moves happen through
// lifecycle rules or copies.
func (p *Provider) SetTier(ctx context.Context, key string, tier tiering.Tier) error {
	return fmt.Errorf("%w: s3 has no direct tier mutation", tiering.ErrNotSupported)
}

// StartRestore begins the asynchronous Glacier retrieval, producing a
// temporary readable copy for the given number of days.
func (p *Provider) StartRestore(ctx context.Context, key string, days int) error {
	_, err := p.client.RestoreObject(ctx, &s3.RestoreObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		RestoreRequest: &types.RestoreRequest{
			Days: aws.Int32(int32(days)),
			GlacierJobParameters: &types.GlacierJobParameters{
				Tier: types.TierStandard,
			},
		},
	})
	return mapError(err)
}

// RestoreStatus derives the restore phase from the object's metadata:
// the storage class says whether the object still lives in an archive
// class, and the x-amz-restore header says whether a retrieval is in
// flight or a temporary copy is ready.
func (p *Provider) RestoreStatus(ctx context.Context, key string) (tiering.RestoreState, error) {
	out, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return tiering.RestoreNotStarted, mapError(err)
	}

	// HeadObject omits the storage class for STANDARD objects, so
	// anything outside an archive class is already permanent.
	if tierFromStorageClass(string(out.StorageClass)) != tiering.TierArchive {
		return tiering.RestorePermanentlyPromoted, nil
	}

	restore := aws.ToString(out.Restore)
	switch {
	case restore == "":
		return tiering.RestoreNotStarted, nil
	case strings.Contains(restore, `ongoing-request="true"`):
		return tiering.RestorePending, nil
	case strings.Contains(restore, `ongoing-request="false"`):
		return tiering.RestoreTemporaryCopyReady, nil
	}
	return tiering.RestoreNotStarted, nil
}

// Promote rewrites the object in place at STANDARD storage class. The
// temporary restored copy expires on its own afterwards.
func (p *Provider) Promote(ctx context.Context, key string) error {
	_, err := p.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(p.bucket),
		Key:               aws.String(key),
		CopySource:        aws.String(url.PathEscape(p.bucket + "/" + key)),
		StorageClass:      types.StorageClassStandard,
		MetadataDirective: types.MetadataDirectiveCopy,
		TaggingDirective:  types.TaggingDirectiveCopy,
	})
	return mapError(err)
}

// Download fetches one object's contents.
func (p *Provider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out.Body, nil
}

// Upload writes one object.
func (p *Provider) Upload(ctx context.Context, key string, data io.Reader) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   data,
	})
	return mapError(err)
}

// LifecyclePolicies lists the bucket lifecycle rules. A bucket with no
// lifecycle configuration yields an empty list.
func (p *Provider) LifecyclePolicies(ctx context.Context) ([]tiering.LifecyclePolicy, error) {
	out, err := p.client.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(p.bucket),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchLifecycleConfiguration" {
			return nil, nil
		}
		return nil, mapError(err)
	}

	policies := make([]tiering.LifecyclePolicy, 0, len(out.Rules))
	for _, rule := range out.Rules {
		policy := tiering.LifecyclePolicy{ID: aws.ToString(rule.ID)}
		if rule.Filter != nil {
			policy.Prefix = aws.ToString(rule.Filter.Prefix)
			if rule.Filter.Tag != nil {
				policy.Prefix = fmt.Sprintf("tag:%s=%s",
					aws.ToString(rule.Filter.Tag.Key), aws.ToString(rule.Filter.Tag.Value))
			}
		}
		switch {
		case len(rule.Transitions) > 0:
			t := rule.Transitions[0]
			policy.Action = "transition:" + string(t.StorageClass)
			policy.RetentionDays = int(aws.ToInt32(t.Days))
		case rule.Expiration != nil:
			policy.Action = "expire"
			policy.RetentionDays = int(aws.ToInt32(rule.Expiration.Days))
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

func tierFromStorageClass(class string) tiering.Tier {
	switch types.ObjectStorageClass(class) {
	case types.ObjectStorageClassGlacier,
		types.ObjectStorageClassDeepArchive,
		types.ObjectStorageClassGlacierIr:
		return tiering.TierArchive
	case types.ObjectStorageClassStandard,
		types.ObjectStorageClassStandardIa,
		types.ObjectStorageClassOnezoneIa,
		types.ObjectStorageClassIntelligentTiering,
		types.ObjectStorageClassReducedRedundancy:
		return tiering.TierHot
	default:
		return tiering.TierUnknown
	}
}

// mapError folds SDK errors into the provider-neutral sentinels the
// pipeline branches on.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %s", tiering.ErrObjectNotFound, apiErr.ErrorMessage())
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		return fmt.Errorf("%w: %s", tiering.ErrPermissionDenied, apiErr.ErrorMessage())
	case "SlowDown", "Throttling", "ThrottlingException", "TooManyRequests", "RequestLimitExceeded":
		return fmt.Errorf("%w: %s", tiering.ErrThrottled, apiErr.ErrorMessage())
	case "RestoreAlreadyInProgress":
		return fmt.Errorf("%w: %s", tiering.ErrAlreadyInProgress, apiErr.ErrorMessage())
	case "InvalidObjectState":
		return fmt.Errorf("%w: %s", tiering.ErrNotReady, apiErr.ErrorMessage())
	}
	return err
}
