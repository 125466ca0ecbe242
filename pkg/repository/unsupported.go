package repository

import (
	"context"
	"io"

	"github.com/marmos91/dittocmis/pkg/cmis"
)

// The repository is read-only towards the protocol. The operations below
// exist so bindings can route every protocol call; they all fail with
// NotSupported once the call context has been checked.

func (r *Repository) unsupported(ctx context.Context, cc CallContext, operation, target string) error {
	return r.call(ctx, cc, operation, target, func(context.Context, *request) error {
		return cmis.NotSupported(operation)
	})
}

func (r *Repository) CreateDocument(ctx context.Context, cc CallContext, folderID string, properties map[string]any, stream io.Reader) (string, error) {
	return "", r.unsupported(ctx, cc, "CreateDocument", folderID)
}

func (r *Repository) CreateFolder(ctx context.Context, cc CallContext, folderID string, properties map[string]any) (string, error) {
	return "", r.unsupported(ctx, cc, "CreateFolder", folderID)
}

func (r *Repository) CreateRelationship(ctx context.Context, cc CallContext, properties map[string]any) (string, error) {
	return "", r.unsupported(ctx, cc, "CreateRelationship", "")
}

func (r *Repository) UpdateProperties(ctx context.Context, cc CallContext, objectID string, properties map[string]any) error {
	return r.unsupported(ctx, cc, "UpdateProperties", objectID)
}

func (r *Repository) MoveObject(ctx context.Context, cc CallContext, objectID, targetFolderID string) error {
	return r.unsupported(ctx, cc, "MoveObject", objectID)
}

func (r *Repository) DeleteObject(ctx context.Context, cc CallContext, objectID string) error {
	return r.unsupported(ctx, cc, "DeleteObject", objectID)
}

func (r *Repository) DeleteTree(ctx context.Context, cc CallContext, folderID string) error {
	return r.unsupported(ctx, cc, "DeleteTree", folderID)
}

func (r *Repository) SetContentStream(ctx context.Context, cc CallContext, objectID string, stream io.Reader) error {
	return r.unsupported(ctx, cc, "SetContentStream", objectID)
}

func (r *Repository) DeleteContentStream(ctx context.Context, cc CallContext, objectID string) error {
	return r.unsupported(ctx, cc, "DeleteContentStream", objectID)
}

func (r *Repository) CheckOut(ctx context.Context, cc CallContext, objectID string) (string, error) {
	return "", r.unsupported(ctx, cc, "CheckOut", objectID)
}

func (r *Repository) CheckIn(ctx context.Context, cc CallContext, objectID string, properties map[string]any) (string, error) {
	return "", r.unsupported(ctx, cc, "CheckIn", objectID)
}

func (r *Repository) CancelCheckOut(ctx context.Context, cc CallContext, objectID string) error {
	return r.unsupported(ctx, cc, "CancelCheckOut", objectID)
}

func (r *Repository) GetAllVersions(ctx context.Context, cc CallContext, objectID string) ([]cmis.ObjectData, error) {
	return nil, r.unsupported(ctx, cc, "GetAllVersions", objectID)
}

func (r *Repository) Query(ctx context.Context, cc CallContext, statement string) (*cmis.ObjectList, error) {
	return nil, r.unsupported(ctx, cc, "Query", "")
}

func (r *Repository) GetContentChanges(ctx context.Context, cc CallContext, changeLogToken string) (*cmis.ObjectList, error) {
	return nil, r.unsupported(ctx, cc, "GetContentChanges", changeLogToken)
}

func (r *Repository) ApplyACL(ctx context.Context, cc CallContext, objectID string, add, remove []cmis.Ace) (*cmis.Acl, error) {
	return nil, r.unsupported(ctx, cc, "ApplyACL", objectID)
}

func (r *Repository) ApplyPolicy(ctx context.Context, cc CallContext, policyID, objectID string) error {
	return r.unsupported(ctx, cc, "ApplyPolicy", objectID)
}

func (r *Repository) GetRenditions(ctx context.Context, cc CallContext, objectID string) ([]cmis.ContentStream, error) {
	return nil, r.unsupported(ctx, cc, "GetRenditions", objectID)
}
