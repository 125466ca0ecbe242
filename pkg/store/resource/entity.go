package resource

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind tags the variant of an Entity.
type Kind int

const (
	KindFolder Kind = iota
	KindDocument
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "document"
}

// Entity is a node of the resource tree: a folder or a document.
//
// Document-only fields (Size, ContentID, MimeType) are zero for folders.
type Entity struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	ParentID uuid.UUID `json:"parent_id"`

	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	ModifiedAt time.Time `json:"modified_at"`
	ModifiedBy string    `json:"modified_by"`

	Size      int64  `json:"size,omitempty"`
	ContentID string `json:"content_id,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
}

func (e *Entity) IsFolder() bool {
	return e.Kind == KindFolder
}

func (e *Entity) IsDocument() bool {
	return e.Kind == KindDocument
}

// HasParent is false only for the store's top-level folder.
func (e *Entity) HasParent() bool {
	return e.ParentID != uuid.Nil
}

// Clone returns a shallow copy safe to hand out to callers.
func (e *Entity) Clone() *Entity {
	c := *e
	return &c
}

// Lock is the write-lock state of an entity. A zero Lock is unlocked.
type Lock struct {
	Owner     string    `json:"owner,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsLocked reports whether the lock is held at time now.
func (l Lock) IsLocked(now time.Time) bool {
	if l.Owner == "" {
		return false
	}
	return l.ExpiresAt.IsZero() || now.Before(l.ExpiresAt)
}

// Available reports whether principalID holds the lock or could take it.
func (l Lock) Available(principalID string, now time.Time) bool {
	return !l.IsLocked(now) || l.Owner == principalID
}

// CleanPath normalizes a slash-separated path. The result always starts
// with "/" and has no trailing slash except for the root.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// JoinPath appends name to a folder path.
func JoinPath(parent, name string) string {
	return CleanPath(parent + "/" + name)
}
