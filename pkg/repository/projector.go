package repository

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/provider"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

const (
	defaultMimeType = "application/octet-stream"
	versionLabel    = "latest"
)

// projector turns store entities into protocol objects for one call. It
// holds the call's session and type snapshot and is never shared.
type projector struct {
	session resource.Session
	types   *typeSnapshot

	// rootID and rootPath locate the folder exposed as the repository root.
	rootID   uuid.UUID
	rootPath string

	objectInfo bool
	now        func() time.Time

	// names caches principal display names for the call.
	names map[string]string
}

func (p *projector) isRoot(e *resource.Entity) bool {
	return e.ID == p.rootID
}

// within reports whether a store path lies under the repository root.
func (p *projector) within(storePath string) bool {
	if p.rootPath == "/" {
		return true
	}
	return storePath == p.rootPath || strings.HasPrefix(storePath, p.rootPath+"/")
}

// protocolPath maps a store path to the path clients see.
func (p *projector) protocolPath(storePath string) string {
	if p.rootPath == "/" {
		return storePath
	}
	rel := strings.TrimPrefix(storePath, p.rootPath)
	if rel == "" {
		return "/"
	}
	return rel
}

// storePath maps a client path to a store path.
func (p *projector) storePath(protocolPath string) string {
	return resource.CleanPath(p.rootPath + "/" + protocolPath)
}

// displayName resolves a principal id for display. Pseudo-principals are
// shown as-is and lookup failures fall back to the raw id.
func (p *projector) displayName(ctx context.Context, id string) string {
	if id == "" || resource.IsPseudoPrincipal(id) {
		return id
	}
	if name, ok := p.names[id]; ok {
		return name
	}

	name := id
	if principal, err := p.session.LookupPrincipal(ctx, id); err == nil {
		name = principal.Label()
	} else {
		logger.Debug("Principal %s not resolved: %v", id, err)
	}
	p.names[id] = name
	return name
}

// project builds the protocol view of obj. f is consumed; pass a copy.
func (p *projector) project(ctx context.Context, obj object, f *Filter, opts ObjectOptions) (cmis.ObjectData, error) {
	var (
		data cmis.ObjectData
		err  error
	)

	switch obj.base {
	case cmis.BaseTypeRelationship:
		data.Properties = p.relationshipProperties(ctx, obj, f)
		if opts.IncludeAllowableActions {
			if data.AllowableActions, err = p.relationshipActions(ctx, obj); err != nil {
				return cmis.ObjectData{}, err
			}
		}
		if opts.IncludeACL {
			data.Acl = &cmis.Acl{Aces: []cmis.Ace{}, Exact: false}
		}
	default:
		if data.Properties, err = p.entityProperties(ctx, obj.entity, f); err != nil {
			return cmis.ObjectData{}, err
		}
		if opts.IncludeAllowableActions {
			if data.AllowableActions, err = p.allowableActions(ctx, obj.entity); err != nil {
				return cmis.ObjectData{}, err
			}
		}
		if opts.IncludeACL {
			if data.Acl, err = p.acl(ctx, obj.entity, opts.OnlyBasicPermissions); err != nil {
				return cmis.ObjectData{}, err
			}
		}
	}

	if p.objectInfo {
		data.Info = p.info(ctx, obj)
	}
	return data, nil
}

// propertyBag collects properties through a filter.
type propertyBag struct {
	filter *Filter
	props  cmis.Properties
}

// add emits a property if the filter lets it through. No values is null.
func (b *propertyBag) add(id string, typ cmis.PropertyType, values ...any) {
	if !b.filter.Emit(id) {
		return
	}
	if values == nil {
		values = []any{}
	}
	b.props = append(b.props, cmis.PropertyData{ID: id, QueryName: id, Type: typ, Values: values})
}

// addString emits a string property, null when ok is false.
func (b *propertyBag) addString(id string, value string, ok bool) {
	if ok {
		b.add(id, cmis.PropertyTypeString, value)
		return
	}
	b.add(id, cmis.PropertyTypeString)
}

// ceilToSecond drops sub-second precision, rounding up to the next whole
// second.
func ceilToSecond(t time.Time) time.Time {
	ms := t.UnixMilli()
	secs := ms / 1000
	if ms%1000 > 0 {
		secs++
	}
	return time.UnixMilli(secs * 1000).UTC()
}

func (p *projector) typeID(e *resource.Entity) cmis.BaseTypeID {
	if e.IsFolder() {
		return cmis.BaseTypeFolder
	}
	return cmis.BaseTypeDocument
}

func (p *projector) entityName(e *resource.Entity) string {
	if e.Name == "" {
		return "/"
	}
	return e.Name
}

func (p *projector) entityProperties(ctx context.Context, e *resource.Entity, f *Filter) (cmis.Properties, error) {
	b := &propertyBag{filter: f}
	base := p.typeID(e)

	b.add(cmis.PropObjectID, cmis.PropertyTypeID, e.ID.String())
	b.add(cmis.PropName, cmis.PropertyTypeString, p.entityName(e))
	p.addAudit(ctx, b, e)
	b.add(cmis.PropChangeToken, cmis.PropertyTypeString)
	b.add(cmis.PropBaseTypeID, cmis.PropertyTypeID, string(base))
	b.add(cmis.PropObjectTypeID, cmis.PropertyTypeID, string(base))

	if e.IsFolder() {
		b.add(cmis.PropPath, cmis.PropertyTypeString, p.protocolPath(e.Path))
		if p.isRoot(e) {
			b.add(cmis.PropParentID, cmis.PropertyTypeID)
		} else {
			b.add(cmis.PropParentID, cmis.PropertyTypeID, e.ParentID.String())
		}
		b.add(cmis.PropAllowedChildObjectTypeIDs, cmis.PropertyTypeID)
	} else {
		p.addDocumentProperties(b, e)
	}

	if err := p.addStoreProperties(ctx, b, e); err != nil {
		return nil, err
	}
	p.addDynamicProperties(ctx, b, e)
	return b.props, nil
}

// addAudit emits creator, modifier and their timestamps.
func (p *projector) addAudit(ctx context.Context, b *propertyBag, e *resource.Entity) {
	if b.filter.Wants(cmis.PropCreatedBy) {
		b.add(cmis.PropCreatedBy, cmis.PropertyTypeString, p.displayName(ctx, e.CreatedBy))
	}
	b.add(cmis.PropCreationDate, cmis.PropertyTypeDateTime, ceilToSecond(e.CreatedAt))
	if b.filter.Wants(cmis.PropLastModifiedBy) {
		b.add(cmis.PropLastModifiedBy, cmis.PropertyTypeString, p.displayName(ctx, e.ModifiedBy))
	}
	b.add(cmis.PropLastModificationDate, cmis.PropertyTypeDateTime, ceilToSecond(e.ModifiedAt))
}

// documentMimeType is the entity's recorded type, else a guess from the
// file extension.
func documentMimeType(e *resource.Entity) string {
	if e.MimeType != "" {
		return e.MimeType
	}
	if t := mime.TypeByExtension(path.Ext(e.Name)); t != "" {
		return t
	}
	return defaultMimeType
}

func (p *projector) addDocumentProperties(b *propertyBag, e *resource.Entity) {
	id := e.ID.String()

	b.add(cmis.PropIsImmutable, cmis.PropertyTypeBoolean, false)
	b.add(cmis.PropIsLatestVersion, cmis.PropertyTypeBoolean, true)
	b.add(cmis.PropIsMajorVersion, cmis.PropertyTypeBoolean, true)
	b.add(cmis.PropIsLatestMajorVersion, cmis.PropertyTypeBoolean, true)
	b.add(cmis.PropVersionLabel, cmis.PropertyTypeString, versionLabel)
	b.add(cmis.PropVersionSeriesID, cmis.PropertyTypeID, id)
	b.add(cmis.PropIsVersionSeriesCheckedOut, cmis.PropertyTypeBoolean, false)
	b.add(cmis.PropVersionSeriesCheckedOutBy, cmis.PropertyTypeString)
	b.add(cmis.PropVersionSeriesCheckedOutID, cmis.PropertyTypeID)
	b.add(cmis.PropCheckinComment, cmis.PropertyTypeString)

	if e.Size == 0 {
		b.add(cmis.PropContentStreamLength, cmis.PropertyTypeInteger)
		b.add(cmis.PropContentStreamMimeType, cmis.PropertyTypeString)
		b.add(cmis.PropContentStreamFileName, cmis.PropertyTypeString)
		b.add(cmis.PropContentStreamID, cmis.PropertyTypeID)
		return
	}
	b.add(cmis.PropContentStreamLength, cmis.PropertyTypeInteger, e.Size)
	b.add(cmis.PropContentStreamMimeType, cmis.PropertyTypeString, documentMimeType(e))
	b.add(cmis.PropContentStreamFileName, cmis.PropertyTypeString, e.Name)
	b.add(cmis.PropContentStreamID, cmis.PropertyTypeID, id)
}

// addStoreProperties emits a direct and an inherited value for every store
// property name, null when the entity has none.
func (p *projector) addStoreProperties(ctx context.Context, b *propertyBag, e *resource.Entity) error {
	if len(p.types.propertyNames) == 0 {
		return nil
	}

	var direct, inherited map[string]string
	var err error
	if b.filter.WantsPrefix(DirectNamespace) {
		if direct, err = p.session.Properties(ctx, e.ID, false); err != nil {
			return err
		}
	}
	if b.filter.WantsPrefix(InheritedNamespace) {
		if inherited, err = p.session.Properties(ctx, e.ID, true); err != nil {
			return err
		}
	}

	for _, name := range p.types.propertyNames {
		v, ok := direct[name]
		b.addString(DirectNamespace+name, v, ok)
		v, ok = inherited[name]
		b.addString(InheritedNamespace+name, v, ok)
	}
	return nil
}

// addDynamicProperties asks each provider for its value. A failing provider
// yields null.
func (p *projector) addDynamicProperties(ctx context.Context, b *propertyBag, e *resource.Entity) {
	for _, prov := range p.types.providers {
		id := DynamicNamespace + prov.Name()
		if !b.filter.Wants(id) {
			continue
		}

		v, err := providerValue(ctx, prov, p.session, e)
		if err != nil {
			if !errors.Is(err, provider.ErrNoValue) {
				logger.Warn("Provider %s failed on %s: %v", prov.Name(), e.Path, err)
			}
			b.add(id, cmis.PropertyTypeString)
			continue
		}
		b.add(id, cmis.PropertyTypeString, v)
	}
}

// providerValue calls prov, turning a panic into an error.
func providerValue(ctx context.Context, prov provider.Provider, session resource.Session, e *resource.Entity) (v string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider panicked: %v", rec)
		}
	}()
	return prov.Value(ctx, session, e)
}

// relationshipName renders "type[ source -> target ]" with repository paths.
func (p *projector) relationshipName(rel resource.Relation, source, target *resource.Entity) string {
	return fmt.Sprintf("%s[ %s -> %s ]", rel.Type, p.protocolPath(source.Path), p.protocolPath(target.Path))
}

func (p *projector) relationshipProperties(ctx context.Context, obj object, f *Filter) cmis.Properties {
	b := &propertyBag{filter: f}
	typeID := RelationshipTypeID(obj.relation.Type)

	b.add(cmis.PropObjectID, cmis.PropertyTypeID, obj.id())
	b.add(cmis.PropName, cmis.PropertyTypeString, p.relationshipName(obj.relation, obj.entity, obj.target))
	p.addAudit(ctx, b, obj.entity)
	b.add(cmis.PropChangeToken, cmis.PropertyTypeString)
	b.add(cmis.PropBaseTypeID, cmis.PropertyTypeID, string(cmis.BaseTypeRelationship))
	b.add(cmis.PropObjectTypeID, cmis.PropertyTypeID, typeID)
	b.add(cmis.PropSourceID, cmis.PropertyTypeID, obj.relation.SourceID.String())
	b.add(cmis.PropTargetID, cmis.PropertyTypeID, obj.relation.TargetID.String())
	return b.props
}

func (p *projector) info(ctx context.Context, obj object) *cmis.ObjectInfo {
	e := obj.entity
	info := &cmis.ObjectInfo{
		ID:           obj.id(),
		CreatedBy:    p.displayName(ctx, e.CreatedBy),
		CreationDate: ceilToSecond(e.CreatedAt),
		LastModified: ceilToSecond(e.ModifiedAt),
		BaseType:     obj.base,
	}

	switch obj.base {
	case cmis.BaseTypeRelationship:
		info.Name = p.relationshipName(obj.relation, obj.entity, obj.target)
		info.TypeID = RelationshipTypeID(obj.relation.Type)
		info.RelationshipSource = obj.relation.SourceID.String()
		info.RelationshipTarget = obj.relation.TargetID.String()
	case cmis.BaseTypeFolder:
		info.Name = p.entityName(e)
		info.TypeID = string(cmis.BaseTypeFolder)
		info.HasParent = !p.isRoot(e)
	default:
		info.Name = p.entityName(e)
		info.TypeID = string(cmis.BaseTypeDocument)
		info.HasParent = true
		info.HasContent = e.Size > 0
		if info.HasContent {
			info.ContentType = documentMimeType(e)
			info.FileName = e.Name
		}
	}
	return info
}
