package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/store/content"
	contentfs "github.com/marmos91/dittocmis/pkg/store/content/fs"
	contentmemory "github.com/marmos91/dittocmis/pkg/store/content/memory"
	"github.com/marmos91/dittocmis/pkg/store/content/s3"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/marmos91/dittocmis/pkg/store/resource/badger"
	"github.com/marmos91/dittocmis/pkg/store/resource/memory"
	"github.com/mitchellh/mapstructure"
)

// memoryStoreOptions are the store.memory options.
type memoryStoreOptions struct {
	// Seed fills the store with a demo tree
	Seed bool `mapstructure:"seed"`

	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// s3Options are the content.s3 options.
type s3Options struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// decodeOptions decodes a store option map, accepting "10s" style durations
// and numbers written as strings (environment overrides).
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}

// CreateResourceStore creates the resource store selected by cfg. seed
// reports whether the caller should fill it with the demo tree.
func CreateResourceStore(ctx context.Context, cfg *StoreConfig) (store resource.MutableStore, seed bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	switch cfg.Type {
	case "memory":
		var opts memoryStoreOptions
		if err := decodeOptions(cfg.Memory, &opts); err != nil {
			return nil, false, fmt.Errorf("invalid memory store config: %w", err)
		}
		return memory.NewMemoryResourceStore(memory.MemoryResourceStoreConfig{BcryptCost: opts.BcryptCost}), opts.Seed, nil

	case "badger":
		var badgerCfg badger.BadgerResourceStoreConfig
		if err := decodeOptions(cfg.Badger, &badgerCfg); err != nil {
			return nil, false, fmt.Errorf("invalid badger store config: %w", err)
		}
		if err := validate.Struct(badgerCfg); err != nil {
			return nil, false, fmt.Errorf("badger store: %w", formatValidationError(err))
		}
		store, err := badger.NewBadgerResourceStore(ctx, badgerCfg)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open badger database: %w", err)
		}
		return store, false, nil

	default:
		return nil, false, fmt.Errorf("unknown resource store type: %q (supported: memory, badger)", cfg.Type)
	}
}

// CreateContentStore creates the content store selected by cfg.
func CreateContentStore(ctx context.Context, cfg *ContentConfig) (content.ContentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "memory":
		return contentmemory.NewMemoryContentStore(), nil
	case "filesystem":
		return createFilesystemContentStore(ctx, cfg.Filesystem)
	case "s3":
		return createS3ContentStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown content store type: %q", cfg.Type)
	}
}

func createFilesystemContentStore(ctx context.Context, options map[string]any) (content.ContentStore, error) {
	var fsCfg contentfs.FSContentStoreConfig
	if err := decodeOptions(options, &fsCfg); err != nil {
		return nil, fmt.Errorf("invalid filesystem config: %w", err)
	}
	if fsCfg.Path == "" {
		return nil, fmt.Errorf("filesystem content store: path is required")
	}

	store, err := contentfs.NewFSContentStore(ctx, fsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filesystem store: %w", err)
	}
	return store, nil
}

func createS3ContentStore(ctx context.Context, options map[string]any) (content.ContentStore, error) {
	var opts s3Options
	if err := decodeOptions(options, &opts); err != nil {
		return nil, fmt.Errorf("invalid S3 config: %w", err)
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("S3 content store: bucket is required")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("S3 content store: region is required")
	}

	client, err := newS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}

	store, err := s3.NewS3ContentStore(ctx, s3.S3ContentStoreConfig{
		Client:    client,
		Bucket:    opts.Bucket,
		KeyPrefix: opts.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 content store: %w", err)
	}

	logger.Info("S3 content store initialized: bucket=%s, region=%s, prefix=%s",
		opts.Bucket, opts.Region, opts.KeyPrefix)
	return store, nil
}

// newS3Client builds a client from static credentials when given, the
// default credential chain otherwise.
func newS3Client(ctx context.Context, opts s3Options) (*awss3.Client, error) {
	configOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		configOptions = append(configOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsconfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		// MinIO and Localstack need path-style addressing
		o.UsePathStyle = opts.ForcePathStyle || opts.Endpoint != ""
	}), nil
}
