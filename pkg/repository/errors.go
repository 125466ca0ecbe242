package repository

import (
	"errors"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// mapStoreError translates a failure into a protocol error. It is applied
// once, at the facade boundary.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	var protocolErr *cmis.Error
	if errors.As(err, &protocolErr) {
		return protocolErr
	}

	code, ok := resource.CodeOf(err)
	switch {
	case ok && code == resource.ErrNotFound:
		return &cmis.Error{Kind: cmis.KindNotFound, Message: "not found", Cause: err}
	case ok && (code == resource.ErrPermissionDenied || code == resource.ErrAuthFailed):
		return &cmis.Error{Kind: cmis.KindUnauthorized, Message: "access denied", Cause: err}
	case errors.Is(err, content.ErrContentNotFound):
		return &cmis.Error{Kind: cmis.KindNotFound, Message: "content not found", Cause: err}
	}
	return cmis.Runtime(err, "repository failure")
}
