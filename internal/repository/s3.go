package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/smashpoint/league/internal/domain"
)

// ObjectAPI is the subset of the S3 client the document backend uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3DocumentRepository stores the document as one JSON object in an S3 compatible bucket.
type S3DocumentRepository struct {
	client ObjectAPI
	bucket string
	key    string
}

// NewS3DocumentRepository returns an object-storage backed DocumentRepository.
func NewS3DocumentRepository(client ObjectAPI, bucket, key string) *S3DocumentRepository {
	return &S3DocumentRepository{client: client, bucket: bucket, key: key}
}

func (r *S3DocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return domain.NewDocument(), nil
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", r.bucket, r.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object: %w", err)
	}
	return decodeDocument(data)
}

func (r *S3DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(r.key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", r.bucket, r.key, err)
	}
	return nil
}

func (r *S3DocumentRepository) Ping(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", r.bucket, err)
	}
	return nil
}
