package repository

import (
	"context"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/content"
)

// GetContentStream opens the body of a document. The caller closes the
// returned stream.
func (r *Repository) GetContentStream(ctx context.Context, cc CallContext, objectID string) (*cmis.ContentStream, error) {
	var stream *cmis.ContentStream
	err := r.call(ctx, cc, "GetContentStream", objectID, func(ctx context.Context, req *request) error {
		doc, err := req.document(ctx, objectID)
		if err != nil {
			return err
		}
		if doc.Size == 0 || doc.ContentID == "" || r.content == nil {
			return cmis.NotFound("document %q has no content stream", objectID)
		}

		rc, err := r.content.ReadContent(ctx, content.ContentID(doc.ContentID))
		if err != nil {
			return err
		}
		stream = &cmis.ContentStream{
			FileName: doc.Name,
			MimeType: documentMimeType(doc),
			Length:   doc.Size,
			Stream:   rc,
		}
		return nil
	})
	return stream, err
}
