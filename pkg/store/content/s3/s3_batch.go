package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/dittocmis/pkg/store/content"
)

// maxDeleteObjects is the S3 limit of keys per DeleteObjects request.
const maxDeleteObjects = 1000

// ListAllContent lists every object under the key prefix.
func (s *S3ContentStore) ListAllContent(ctx context.Context) ([]content.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []content.ContentID
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.keyPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if id, ok := s.contentID(aws.ToString(obj.Key)); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// DeleteBatch removes ids with DeleteObjects, chunked to the S3 limit. A
// failed request marks its whole chunk as failed.
func (s *S3ContentStore) DeleteBatch(ctx context.Context, ids []content.ContentID) (map[content.ContentID]error, error) {
	failures := make(map[content.ContentID]error)

	for start := 0; start < len(ids); start += maxDeleteObjects {
		if err := ctx.Err(); err != nil {
			for _, id := range ids[start:] {
				failures[id] = err
			}
			return failures, err
		}

		batch := ids[start:min(start+maxDeleteObjects, len(ids))]
		objects := make([]types.ObjectIdentifier, len(batch))
		for i, id := range batch {
			objects[i] = types.ObjectIdentifier{Key: aws.String(s.getObjectKey(id))}
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			for _, id := range batch {
				failures[id] = err
			}
			continue
		}

		for _, e := range out.Errors {
			id, ok := s.contentID(aws.ToString(e.Key))
			if !ok {
				continue
			}
			failures[id] = errors.New(aws.ToString(e.Code) + ": " + aws.ToString(e.Message))
		}
	}
	return failures, nil
}

// contentID strips the key prefix. Keys outside the prefix are not ours.
func (s *S3ContentStore) contentID(key string) (content.ContentID, bool) {
	id, ok := strings.CutPrefix(key, s.keyPrefix)
	if !ok || id == "" {
		return "", false
	}
	return content.ContentID(id), true
}
