package provider

import (
	"context"
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// Builtin provider names.
const (
	NameSize             = "size"
	NameDetectedMimeType = "detected-mimetype"
)

// sniffLength is how much content the mimetype detector reads.
const sniffLength = 3072

// SizeProvider renders a document's length in human-readable form
// ("42 kB").
type SizeProvider struct{}

func NewSizeProvider() *SizeProvider {
	return &SizeProvider{}
}

func (SizeProvider) Name() string   { return NameSize }
func (SizeProvider) Writable() bool { return false }

func (SizeProvider) Value(_ context.Context, _ resource.Session, e *resource.Entity) (string, error) {
	if !e.IsDocument() {
		return "", ErrNoValue
	}
	return humanize.Bytes(uint64(max(e.Size, 0))), nil
}

// MimeTypeProvider detects a document's media type from its leading bytes.
type MimeTypeProvider struct {
	store content.ContentStore
}

func NewMimeTypeProvider(store content.ContentStore) *MimeTypeProvider {
	return &MimeTypeProvider{store: store}
}

func (*MimeTypeProvider) Name() string   { return NameDetectedMimeType }
func (*MimeTypeProvider) Writable() bool { return false }

func (p *MimeTypeProvider) Value(ctx context.Context, _ resource.Session, e *resource.Entity) (string, error) {
	if !e.IsDocument() || e.Size == 0 || e.ContentID == "" || p.store == nil {
		return "", ErrNoValue
	}

	head, err := content.ReadPrefix(ctx, p.store, content.ContentID(e.ContentID), sniffLength)
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			return "", ErrNoValue
		}
		return "", err
	}
	return mimetype.Detect(head).String(), nil
}

// PropertyProvider exposes one stored property under a provider name. It is
// writable: updates go to the underlying stored property.
type PropertyProvider struct {
	name     string
	property string
	inherit  bool
}

// NewPropertyProvider exposes store property under name. With inherit set,
// the nearest ancestor's value is used when the entity has none.
func NewPropertyProvider(name, property string, inherit bool) *PropertyProvider {
	return &PropertyProvider{name: name, property: property, inherit: inherit}
}

func (p *PropertyProvider) Name() string   { return p.name }
func (p *PropertyProvider) Writable() bool { return true }

func (p *PropertyProvider) Value(ctx context.Context, s resource.Session, e *resource.Entity) (string, error) {
	v, ok, err := s.Property(ctx, e.ID, p.property, p.inherit)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoValue
	}
	return v, nil
}
