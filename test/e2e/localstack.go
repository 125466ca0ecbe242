package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dittocmis/test/e2e/framework"
)

// LocalstackHelper manages Localstack S3 buckets for tests.
type LocalstackHelper struct {
	T        *testing.T
	Endpoint string
	Client   *s3.Client
	Buckets  []string
}

// NewLocalstackHelper creates a client for LOCALSTACK_ENDPOINT, default
// http://localhost:4566.
func NewLocalstackHelper(t *testing.T) *LocalstackHelper {
	t.Helper()

	endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	cfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion("us-east-1"),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	if err != nil {
		t.Fatalf("Failed to load AWS config: %v", err)
	}

	return &LocalstackHelper{
		T:        t,
		Endpoint: endpoint,
		Client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}),
	}
}

// CreateBucket creates a bucket and registers it for cleanup.
func (lh *LocalstackHelper) CreateBucket(ctx context.Context, bucketName string) error {
	lh.T.Helper()

	_, err := lh.Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucketName)})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	lh.Buckets = append(lh.Buckets, bucketName)
	return nil
}

// Cleanup empties and removes every created bucket.
func (lh *LocalstackHelper) Cleanup() {
	ctx := context.Background()

	for _, bucketName := range lh.Buckets {
		paginator := s3.NewListObjectsV2Paginator(lh.Client, &s3.ListObjectsV2Input{Bucket: aws.String(bucketName)})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				break
			}
			for _, obj := range page.Contents {
				_, _ = lh.Client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucketName), Key: obj.Key})
			}
		}
		_, _ = lh.Client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucketName)})
	}
}

// SetupS3Config creates a fresh bucket and returns a server config using
// it.
func SetupS3Config(t *testing.T, helper *LocalstackHelper) framework.TestServerConfig {
	t.Helper()

	bucketName := fmt.Sprintf("dittocmis-e2e-%x", time.Now().UnixNano())
	if err := helper.CreateBucket(context.Background(), bucketName); err != nil {
		t.Fatalf("Failed to create S3 bucket: %v", err)
	}

	return framework.TestServerConfig{
		ContentStore: framework.StoreTypeS3,
		S3Endpoint:   helper.Endpoint,
		S3Bucket:     bucketName,
	}
}

// CheckLocalstackAvailable reports whether Localstack answers.
func CheckLocalstackAvailable(t *testing.T) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewLocalstackHelper(t).Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	return err == nil
}
