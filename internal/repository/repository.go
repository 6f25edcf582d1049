// Package repository implements the persistence core: the transactional
// assembler that writes a parent event plus its child collections as a
// unit, and the reconstructor that reassembles the submitted document
// shape from the rows. Both directions are driven by the schema
// descriptors, never by per-type code.
package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/IvanBrasilico/apirecintos/internal/apperrors"
	"github.com/IvanBrasilico/apirecintos/internal/database"
	"github.com/IvanBrasilico/apirecintos/internal/fingerprint"
	"github.com/IvanBrasilico/apirecintos/internal/models"
	"github.com/IvanBrasilico/apirecintos/internal/schema"
	"github.com/IvanBrasilico/apirecintos/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Submission carries the server-assigned attribution of one request:
// the facility verified by authentication and the caller's address.
type Submission struct {
	FacilityCode string
	OriginIP     string
}

// FileContent is a loaded attachment ready to serve.
type FileContent struct {
	Name        string
	ContentType string
	Data        []byte
}

// Repository provides data access methods
type Repository interface {
	// Event operations
	InsertEvent(ctx context.Context, et *schema.EventType, doc schema.Document, sub Submission) (models.Event, error)
	LoadEvent(ctx context.Context, et *schema.EventType, facility, externalID string) (schema.Document, error)
	ListEventsSince(ctx context.Context, et *schema.EventType, facility string, since time.Time, limit int) ([]schema.Document, error)
	DeactivateRegistration(ctx context.Context, et *schema.EventType, facility, externalID string) error
	LoadAttachment(ctx context.Context, et *schema.EventType, facility, externalID, filename string) (*FileContent, error)

	// APIKey operations
	CreateAPIKey(ctx context.Context, apiKey *models.APIKey) error
	GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error)
	UpdateAPIKey(ctx context.Context, apiKey *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uint) error
}

// GormRepository implements Repository over GORM and a blob store.
type GormRepository struct {
	db    *gorm.DB
	store storage.Store
}

// NewRepository creates a repository backed by the given database and
// attachment store.
func NewRepository(db database.DB, store storage.Store) (*GormRepository, error) {
	gormDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &GormRepository{db: gormDB, store: store}, nil
}

// NewRepositoryWithDB creates a repository over an already-open gorm
// handle. Used by tests and the CLI.
func NewRepositoryWithDB(db *gorm.DB, store storage.Store) *GormRepository {
	return &GormRepository{db: db, store: store}
}

// InsertEvent validates and persists one event document: the parent
// row and every child collection in a single transaction. The
// fingerprint is computed from the scalar content before the insert
// and stored on the row, so reads return it without recomputation.
func (r *GormRepository) InsertEvent(ctx context.Context, et *schema.EventType, doc schema.Document, sub Submission) (models.Event, error) {
	ev, err := schema.BindEvent(et, doc)
	if err != nil {
		return nil, err
	}

	env := ev.EventEnvelope()
	env.FacilityCode = sub.FacilityCode
	env.OriginIP = sub.OriginIP
	if reg, ok := ev.(models.Registration); ok {
		reg.LifecycleState().Active = true
	}

	scalars, err := schema.Dump(et, ev)
	if err != nil {
		return nil, err
	}
	delete(scalars, "fingerprint")
	env.Fingerprint = fingerprint.Compute(scalars)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(ev).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Wrap(apperrors.Duplicate, err,
					"event %s already reported by facility %s",
					env.ExternalEventID, env.FacilityCode)
			}
			return apperrors.Wrap(apperrors.Persistence, err, "inserting event")
		}
		for i := range et.Children {
			c := &et.Children[i]
			if err := r.insertChildren(tx, c, doc, ev.RecordID(), env); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// insertChildren persists one child collection of a parent row,
// recursing into grandchild collections.
func (r *GormRepository) insertChildren(tx *gorm.DB, c *schema.Child, doc schema.Document, parentID uint, env *models.Envelope) error {
	raw, ok := doc[c.Key]
	if !ok || raw == nil {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return apperrors.New(apperrors.Validation, "%q must be a list", c.Key)
	}
	for _, item := range items {
		rec, itemDoc, err := schema.BindChild(c, item)
		if err != nil {
			return err
		}
		rec.SetParentID(parentID)
		if c.Attachment {
			if err := r.saveAttachment(rec, itemDoc, env); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return apperrors.Wrap(apperrors.Persistence, err,
				"inserting %q item", c.Key)
		}
		for i := range c.Children {
			gc := &c.Children[i]
			if err := r.insertChildren(tx, gc, itemDoc, rec.RecordID(), env); err != nil {
				return err
			}
		}
	}
	return nil
}

// saveAttachment decodes the base64 content of one attachment item and
// writes it to the blob store. A store failure aborts the surrounding
// transaction so no row references a file that was never written.
func (r *GormRepository) saveAttachment(rec models.ChildRecord, itemDoc schema.Document, env *models.Envelope) error {
	att, ok := rec.(models.AttachmentRecord)
	if !ok {
		return apperrors.New(apperrors.Persistence,
			"attachment record without metadata")
	}
	meta := att.Meta()
	// The filename becomes part of the blob path; only a bare name
	// keeps the file contained under the facility's directory.
	if name := meta.Filename; name != filepath.Base(name) ||
		name == "." || name == ".." || strings.ContainsRune(name, '\\') {
		return apperrors.New(apperrors.Validation,
			"invalid attachment filename %q", meta.Filename)
	}
	encoded, _ := itemDoc["content"].(string)
	if encoded == "" {
		return apperrors.New(apperrors.Validation,
			"attachment %q has no content", meta.Filename)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return apperrors.Wrap(apperrors.Validation, err,
			"content of %q is not valid base64", meta.Filename)
	}
	contentType, err := r.store.Save(env.FacilityCode, env.OccurredAt, meta.Filename, data)
	if err != nil {
		return apperrors.Wrap(apperrors.Persistence, err,
			"storing attachment %q", meta.Filename)
	}
	if meta.ContentType == "" {
		meta.ContentType = contentType
	}
	return nil
}

// findParent locates the single parent row for the lookup key. Zero
// rows is NotFound; more than one means the uniqueness guarantee was
// violated and reads must fail loudly instead of picking a row.
func (r *GormRepository) findParent(ctx context.Context, et *schema.EventType, facility, externalID string) (models.Event, error) {
	ev := et.Make()
	var count int64
	err := r.db.WithContext(ctx).Model(ev).
		Where("facility_code = ? AND external_event_id = ?", facility, externalID).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, err, "looking up event")
	}
	switch {
	case count == 0:
		return nil, apperrors.New(apperrors.NotFound,
			"event %s of type %s not found for facility %s",
			externalID, et.Name, facility)
	case count > 1:
		return nil, apperrors.New(apperrors.Consistency,
			"%d rows for event %s of facility %s", count, externalID, facility)
	}
	err = r.db.WithContext(ctx).
		Where("facility_code = ? AND external_event_id = ?", facility, externalID).
		First(ev).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, err, "loading event")
	}
	return ev, nil
}

// LoadEvent reconstructs the full document of one persisted event:
// scalar fields, stored fingerprint and every child collection in the
// shape it was submitted.
func (r *GormRepository) LoadEvent(ctx context.Context, et *schema.EventType, facility, externalID string) (schema.Document, error) {
	ev, err := r.findParent(ctx, et, facility, externalID)
	if err != nil {
		return nil, err
	}
	return r.reconstruct(ctx, et, ev)
}

func (r *GormRepository) reconstruct(ctx context.Context, et *schema.EventType, ev models.Event) (schema.Document, error) {
	doc, err := schema.Dump(et, ev)
	if err != nil {
		return nil, err
	}
	if reg, ok := ev.(models.Registration); ok {
		lc := reg.LifecycleState()
		doc["active"] = lc.Active
		if lc.EndedAt != nil {
			doc["endedAt"] = lc.EndedAt
		}
	}
	for i := range et.Children {
		c := &et.Children[i]
		items, err := r.loadChildren(ctx, c, ev.RecordID(), ev.EventEnvelope())
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			doc[c.Key] = items
		}
	}
	return doc, nil
}

// loadChildren reads one child collection ordered by insertion,
// recursing into grandchild collections and inlining attachment
// content from the blob store.
func (r *GormRepository) loadChildren(ctx context.Context, c *schema.Child, parentID uint, env *models.Envelope) ([]interface{}, error) {
	recs, err := r.childRows(ctx, c, parentID)
	if err != nil {
		return nil, err
	}
	items := make([]interface{}, 0, len(recs))
	for _, rec := range recs {
		item, err := schema.DumpChild(c, rec)
		if err != nil {
			return nil, err
		}
		itemDoc, isDoc := item.(schema.Document)
		if c.Attachment && isDoc {
			att := rec.(models.AttachmentRecord)
			data, err := r.store.Load(env.FacilityCode, env.OccurredAt, att.Meta().Filename)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.Persistence, err,
					"loading attachment %q", att.Meta().Filename)
			}
			itemDoc["content"] = base64.StdEncoding.EncodeToString(data)
		}
		if isDoc {
			for i := range c.Children {
				gc := &c.Children[i]
				grand, err := r.loadChildren(ctx, gc, rec.RecordID(), env)
				if err != nil {
					return nil, err
				}
				if len(grand) > 0 {
					itemDoc[gc.Key] = grand
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// childRows loads the typed rows of one collection. The slice type is
// derived from the descriptor's constructor so the query stays generic.
func (r *GormRepository) childRows(ctx context.Context, c *schema.Child, parentID uint) ([]models.ChildRecord, error) {
	proto := c.Make()
	slicePtr := reflect.New(reflect.SliceOf(reflect.TypeOf(proto).Elem()))
	err := r.db.WithContext(ctx).
		Where(c.FKColumn+" = ?", parentID).
		Order("id").
		Find(slicePtr.Interface()).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, err,
			"loading %q items", c.Key)
	}
	slice := slicePtr.Elem()
	recs := make([]models.ChildRecord, 0, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		recs = append(recs, slice.Index(i).Addr().Interface().(models.ChildRecord))
	}
	return recs, nil
}

// ListEventsSince returns the documents of a facility's events of one
// type occurred at or after the cutoff, oldest first.
func (r *GormRepository) ListEventsSince(ctx context.Context, et *schema.EventType, facility string, since time.Time, limit int) ([]schema.Document, error) {
	proto := et.Make()
	slicePtr := reflect.New(reflect.SliceOf(reflect.TypeOf(proto).Elem()))
	err := r.db.WithContext(ctx).
		Where("facility_code = ? AND occurred_at >= ?", facility, since).
		Order("occurred_at").
		Limit(limit).
		Find(slicePtr.Interface()).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, err, "listing events")
	}
	slice := slicePtr.Elem()
	docs := make([]schema.Document, 0, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		ev := slice.Index(i).Addr().Interface().(models.Event)
		doc, err := r.reconstruct(ctx, et, ev)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DeactivateRegistration performs the single terminal transition of a
// registration. Deactivating twice is a caller error, not a conflict.
func (r *GormRepository) DeactivateRegistration(ctx context.Context, et *schema.EventType, facility, externalID string) error {
	ev, err := r.findParent(ctx, et, facility, externalID)
	if err != nil {
		return err
	}
	reg, ok := ev.(models.Registration)
	if !ok {
		return apperrors.New(apperrors.Validation,
			"event type %s has no lifecycle", et.Name)
	}
	if err := reg.LifecycleState().Deactivate(time.Now().UTC()); err != nil {
		return apperrors.Wrap(apperrors.Validation, err, "deactivating registration")
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(ev).Error; err != nil {
		return apperrors.Wrap(apperrors.Persistence, err, "saving registration")
	}
	return nil
}

// LoadAttachment serves one attachment of a persisted event by
// filename, with the content type recorded at submission.
func (r *GormRepository) LoadAttachment(ctx context.Context, et *schema.EventType, facility, externalID, filename string) (*FileContent, error) {
	ev, err := r.findParent(ctx, et, facility, externalID)
	if err != nil {
		return nil, err
	}
	for i := range et.Children {
		c := &et.Children[i]
		if !c.Attachment {
			continue
		}
		recs, err := r.childRows(ctx, c, ev.RecordID())
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			meta := rec.(models.AttachmentRecord).Meta()
			if meta.Filename != filename {
				continue
			}
			data, err := r.store.Load(ev.EventEnvelope().FacilityCode, ev.EventEnvelope().OccurredAt, filename)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.Persistence, err,
					"loading attachment %q", filename)
			}
			return &FileContent{
				Name:        meta.Filename,
				ContentType: meta.ContentType,
				Data:        data,
			}, nil
		}
	}
	return nil, apperrors.New(apperrors.NotFound,
		"attachment %q not found on event %s", filename, externalID)
}

// CreateAPIKey creates a new API key
func (r *GormRepository) CreateAPIKey(ctx context.Context, apiKey *models.APIKey) error {
	return r.db.WithContext(ctx).Create(apiKey).Error
}

// GetAPIKeyByKey finds an API key by its key value
func (r *GormRepository) GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error) {
	var apiKey models.APIKey
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "api key not found")
		}
		return nil, apperrors.Wrap(apperrors.Persistence, err, "loading api key")
	}
	return &apiKey, nil
}

// UpdateAPIKey updates an existing API key
func (r *GormRepository) UpdateAPIKey(ctx context.Context, apiKey *models.APIKey) error {
	return r.db.WithContext(ctx).Save(apiKey).Error
}

// ListAPIKeys lists all API keys
func (r *GormRepository) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	if err := r.db.WithContext(ctx).Order("id").Find(&keys).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, err, "listing api keys")
	}
	return keys, nil
}

// RevokeAPIKey deactivates an API key by id
func (r *GormRepository) RevokeAPIKey(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.Persistence, res.Error, "revoking api key")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.NotFound, "api key %d not found", id)
	}
	return nil
}
