// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package s3blob

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// mockClient implements Client with function fields.
type mockClient struct {
	listFn      func(*s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
	headFn      func(*s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
	getFn       func(*s3.GetObjectInput) (*s3.GetObjectOutput, error)
	putFn       func(*s3.PutObjectInput) (*s3.PutObjectOutput, error)
	tagFn       func(*s3.PutObjectTaggingInput) (*s3.PutObjectTaggingOutput, error)
	restoreFn   func(*s3.RestoreObjectInput) (*s3.RestoreObjectOutput, error)
	copyFn      func(*s3.CopyObjectInput) (*s3.CopyObjectOutput, error)
	lifecycleFn func(*s3.GetBucketLifecycleConfigurationInput) (*s3.GetBucketLifecycleConfigurationOutput, error)
}

func (m *mockClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return m.listFn(params)
}
func (m *mockClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return m.headFn(params)
}
func (m *mockClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.getFn(params)
}
func (m *mockClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putFn(params)
}
func (m *mockClient) PutObjectTagging(ctx context.Context, params *s3.PutObjectTaggingInput, optFns ...func(*s3.Options)) (*s3.PutObjectTaggingOutput, error) {
	return m.tagFn(params)
}
func (m *mockClient) RestoreObject(ctx context.Context, params *s3.RestoreObjectInput, optFns ...func(*s3.Options)) (*s3.RestoreObjectOutput, error) {
	return m.restoreFn(params)
}
func (m *mockClient) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	return m.copyFn(params)
}
func (m *mockClient) GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
	return m.lifecycleFn(params)
}

func TestCapabilities(t *testing.T) {
	p := NewWithClient(&mockClient{}, "b")
	caps := p.Capabilities()
	assert.False(t, caps.DirectTierChange)
	assert.True(t, caps.RequiresPromote)
}

func TestListPageMapsStorageClasses(t *testing.T) {
	client := &mockClient{
		listFn: func(in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "b", aws.ToString(in.Bucket))
			assert.Equal(t, "p/", aws.ToString(in.Prefix))
			assert.Nil(t, in.ContinuationToken)
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{Key: aws.String("p/hot"), StorageClass: types.ObjectStorageClassStandard},
					{Key: aws.String("p/cold"), StorageClass: types.ObjectStorageClassGlacier},
					{Key: aws.String("p/deep"), StorageClass: types.ObjectStorageClassDeepArchive},
				},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("next"),
			}, nil
		},
	}

	page, err := NewWithClient(client, "b").ListPage(context.Background(), "p/", "")
	require.NoError(t, err)
	require.Len(t, page.Objects, 3)
	assert.Equal(t, tiering.TierHot, page.Objects[0].Tier)
	assert.Equal(t, tiering.TierArchive, page.Objects[1].Tier)
	assert.Equal(t, tiering.TierArchive, page.Objects[2].Tier)
	assert.Equal(t, "next", page.NextToken)
}

func TestListPagePassesContinuationToken(t *testing.T) {
	client := &mockClient{
		listFn: func(in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "tok", aws.ToString(in.ContinuationToken))
			return &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}, nil
		},
	}

	page, err := NewWithClient(client, "b").ListPage(context.Background(), "p/", "tok")
	require.NoError(t, err)
	assert.Empty(t, page.NextToken)
}

func TestGetTierDefaultsToHot(t *testing.T) {
	client := &mockClient{
		headFn: func(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
			// STANDARD objects omit the storage class in HeadObject.
			return &s3.HeadObjectOutput{}, nil
		},
	}

	tier, err := NewWithClient(client, "b").GetTier(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, tiering.TierHot, tier)
}

func TestSetTagWritesTierTag(t *testing.T) {
	var captured *s3.PutObjectTaggingInput
	client := &mockClient{
		tagFn: func(in *s3.PutObjectTaggingInput) (*s3.PutObjectTaggingOutput, error) {
			captured = in
			return &s3.PutObjectTaggingOutput{}, nil
		},
	}

	require.NoError(t, NewWithClient(client, "b").SetTag(context.Background(), "k", tiering.TierArchive))
	require.NotNil(t, captured)
	require.Len(t, captured.Tagging.TagSet, 1)
	assert.Equal(t, tiering.TagTierKey, aws.ToString(captured.Tagging.TagSet[0].Key))
	assert.Equal(t, "archive", aws.ToString(captured.Tagging.TagSet[0].Value))
}

func TestSetTierNotSupported(t *testing.T) {
	err := NewWithClient(&mockClient{}, "b").SetTier(context.Background(), "k", tiering.TierArchive)
	assert.ErrorIs(t, err, tiering.ErrNotSupported)
}

func TestStartRestoreRequestsStandardRetrieval(t *testing.T) {
	var captured *s3.RestoreObjectInput
	client := &mockClient{
		restoreFn: func(in *s3.RestoreObjectInput) (*s3.RestoreObjectOutput, error) {
			captured = in
			return &s3.RestoreObjectOutput{}, nil
		},
	}

	require.NoError(t, NewWithClient(client, "b").StartRestore(context.Background(), "k", 10))
	require.NotNil(t, captured)
	assert.Equal(t, int32(10), aws.ToInt32(captured.RestoreRequest.Days))
	assert.Equal(t, types.TierStandard, captured.RestoreRequest.GlacierJobParameters.Tier)
}

func TestStartRestoreAlreadyInProgress(t *testing.T) {
	client := &mockClient{
		restoreFn: func(in *s3.RestoreObjectInput) (*s3.RestoreObjectOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "RestoreAlreadyInProgress"}
		},
	}

	err := NewWithClient(client, "b").StartRestore(context.Background(), "k", 10)
	assert.ErrorIs(t, err, tiering.ErrAlreadyInProgress)
}

func TestRestoreStatus(t *testing.T) {
	tests := []struct {
		name    string
		class   types.StorageClass
		restore *string
		want    tiering.RestoreState
	}{
		{
			name:  "not started",
			class: types.StorageClassGlacier,
			want:  tiering.RestoreNotStarted,
		},
		{
			name:    "pending",
			class:   types.StorageClassGlacier,
			restore: aws.String(`ongoing-request="true"`),
			want:    tiering.RestorePending,
		},
		{
			name:    "temporary copy ready",
			class:   types.StorageClassGlacier,
			restore: aws.String(`ongoing-request="false", expiry-date="Fri, 21 Dec 2025 00:00:00 GMT"`),
			want:    tiering.RestoreTemporaryCopyReady,
		},
		{
			name: "promoted to standard",
			want: tiering.RestorePermanentlyPromoted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{
				headFn: func(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
					return &s3.HeadObjectOutput{
						StorageClass: tt.class,
						Restore:      tt.restore,
					}, nil
				},
			}
			state, err := NewWithClient(client, "b").RestoreStatus(context.Background(), "k")
			require.NoError(t, err)
			assert.Equal(t, tt.want, state)
		})
	}
}

func TestPromoteSelfCopiesToStandard(t *testing.T) {
	var captured *s3.CopyObjectInput
	client := &mockClient{
		copyFn: func(in *s3.CopyObjectInput) (*s3.CopyObjectOutput, error) {
			captured = in
			return &s3.CopyObjectOutput{}, nil
		},
	}

	require.NoError(t, NewWithClient(client, "b").Promote(context.Background(), "p/k"))
	require.NotNil(t, captured)
	assert.Equal(t, "b", aws.ToString(captured.Bucket))
	assert.Equal(t, "p/k", aws.ToString(captured.Key))
	assert.Equal(t, "b%2Fp%2Fk", aws.ToString(captured.CopySource))
	assert.Equal(t, types.StorageClassStandard, captured.StorageClass)
	assert.Equal(t, types.TaggingDirectiveCopy, captured.TaggingDirective)
}

func TestLifecyclePolicies(t *testing.T) {
	client := &mockClient{
		lifecycleFn: func(in *s3.GetBucketLifecycleConfigurationInput) (*s3.GetBucketLifecycleConfigurationOutput, error) {
			return &s3.GetBucketLifecycleConfigurationOutput{
				Rules: []types.LifecycleRule{
					{
						ID: aws.String("archive-tagged"),
						Filter: &types.LifecycleRuleFilter{
							Tag: &types.Tag{
								Key:   aws.String(tiering.TagTierKey),
								Value: aws.String("archive"),
							},
						},
						Transitions: []types.Transition{{
							StorageClass: types.TransitionStorageClassGlacier,
							Days:         aws.Int32(1),
						}},
					},
					{
						ID:         aws.String("expire-tmp"),
						Filter:     &types.LifecycleRuleFilter{Prefix: aws.String("tmp/")},
						Expiration: &types.LifecycleExpiration{Days: aws.Int32(7)},
					},
				},
			}, nil
		},
	}

	policies, err := NewWithClient(client, "b").LifecyclePolicies(context.Background())
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, "archive-tagged", policies[0].ID)
	assert.Equal(t, "transition:GLACIER", policies[0].Action)
	assert.Equal(t, 1, policies[0].RetentionDays)
	assert.Equal(t, "tag:StellarBlobTier=archive", policies[0].Prefix)
	assert.Equal(t, "expire", policies[1].Action)
	assert.Equal(t, "tmp/", policies[1].Prefix)
}

func TestLifecyclePoliciesNoneConfigured(t *testing.T) {
	client := &mockClient{
		lifecycleFn: func(in *s3.GetBucketLifecycleConfigurationInput) (*s3.GetBucketLifecycleConfigurationOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "NoSuchLifecycleConfiguration"}
		},
	}

	policies, err := NewWithClient(client, "b").LifecyclePolicies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, policies)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"NoSuchKey", tiering.ErrObjectNotFound},
		{"NotFound", tiering.ErrObjectNotFound},
		{"AccessDenied", tiering.ErrPermissionDenied},
		{"SlowDown", tiering.ErrThrottled},
		{"Throttling", tiering.ErrThrottled},
		{"TooManyRequests", tiering.ErrThrottled},
		{"RestoreAlreadyInProgress", tiering.ErrAlreadyInProgress},
		{"InvalidObjectState", tiering.ErrNotReady},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := mapError(&smithy.GenericAPIError{Code: tt.code, Message: "m"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapErrorPassesThroughUnknown(t *testing.T) {
	err := &smithy.GenericAPIError{Code: "SomethingElse"}
	assert.Equal(t, error(err), mapError(err))
	assert.NoError(t, mapError(nil))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, tiering.ErrInvalidRequest)
}
