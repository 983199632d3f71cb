package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type objectLister interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Snapshots stores snapshots in Amazon S3 (or compatible APIs) under a key prefix.
type S3Snapshots struct {
	client    objectLister
	uploader  objectUploader
	bucket    string
	keyPrefix string
}

func NewS3Snapshots(client *s3.Client, bucket, keyPrefix string) (*S3Snapshots, error) {
	return newS3Snapshots(client, manager.NewUploader(client), bucket, keyPrefix)
}

func newS3Snapshots(client objectLister, uploader objectUploader, bucket, keyPrefix string) (*S3Snapshots, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	return &S3Snapshots{
		client:    client,
		uploader:  uploader,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}, nil
}

func (s *S3Snapshots) key(name string) string {
	if s.keyPrefix == "" {
		return name
	}
	return s.keyPrefix + "/" + name
}

func (s *S3Snapshots) Put(ctx context.Context, name string, body []byte) (string, error) {
	key := s.key(name)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *S3Snapshots) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if s.keyPrefix != "" {
		input.Prefix = aws.String(s.keyPrefix + "/")
	}

	for {
		output, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, obj := range output.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: obj.LastModified,
			})
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = output.NextContinuationToken
	}

	return objects, nil
}

var _ SnapshotStore = (*S3Snapshots)(nil)
