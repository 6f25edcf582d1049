package schema

import (
	"bytes"
	"encoding/json"

	"github.com/IvanBrasilico/apirecintos/internal/apperrors"
	"github.com/IvanBrasilico/apirecintos/internal/models"
)

// BindEvent validates the payload against the event type's required
// fields and materializes the typed parent entity. Child collections
// are not bound here; the assembler walks them descriptor by
// descriptor.
func BindEvent(et *EventType, doc Document) (models.Event, error) {
	if err := checkRequired(doc, EnvelopeFields); err != nil {
		return nil, err
	}
	if err := checkRequired(doc, et.Fields); err != nil {
		return nil, err
	}
	ev := et.Make()
	fields := make([]Field, 0, len(EnvelopeFields)+len(et.Fields))
	fields = append(fields, EnvelopeFields...)
	fields = append(fields, et.Fields...)
	if err := bindInto(ev, doc, fields); err != nil {
		return nil, err
	}
	return ev, nil
}

// BindChild materializes one child row from a collection item. Items
// of scalar collections are wrapped under the descriptor's scalar
// field first. The item document is returned alongside the record so
// the assembler can reach grandchild collections and attachment
// content.
func BindChild(c *Child, item interface{}) (models.ChildRecord, Document, error) {
	doc, ok := item.(map[string]interface{})
	if !ok {
		if c.ScalarField == "" {
			return nil, nil, apperrors.New(apperrors.Validation,
				"item of %q must be an object", c.Key)
		}
		doc = Document{c.ScalarField: item}
	}
	if err := checkRequired(doc, c.Fields); err != nil {
		return nil, nil, err
	}
	rec := c.Make()
	if err := bindInto(rec, doc, c.Fields); err != nil {
		return nil, nil, err
	}
	return rec, doc, nil
}

// Dump produces the scalar document of a persisted event: the
// envelope (server-assigned fields included) plus the type's declared
// fields. Child collections are attached by the reconstructor.
func Dump(et *EventType, ev models.Event) (Document, error) {
	full, err := marshalToDocument(ev)
	if err != nil {
		return nil, err
	}
	out := make(Document, len(envelopeDumpKeys)+len(et.Fields))
	for _, key := range envelopeDumpKeys {
		if v, ok := full[key]; ok {
			out[key] = v
		}
	}
	for _, f := range et.Fields {
		if v, ok := full[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out, nil
}

// DumpChild produces the document form of one child row, restricted
// to declared fields so linkage columns never leak. Scalar children
// collapse back to the bare value they were submitted as.
func DumpChild(c *Child, rec models.ChildRecord) (interface{}, error) {
	full, err := marshalToDocument(rec)
	if err != nil {
		return nil, err
	}
	if c.ScalarField != "" {
		return full[c.ScalarField], nil
	}
	out := make(Document, len(c.Fields))
	for _, f := range c.Fields {
		if v, ok := full[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out, nil
}

func checkRequired(doc Document, fields []Field) error {
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if v, ok := doc[f.Name]; !ok || v == nil {
			return apperrors.New(apperrors.Validation,
				"missing required field %q", f.Name)
		}
	}
	return nil
}

// bindInto copies the declared fields of doc into the tagged struct
// through a JSON round trip, so type coercion and date parsing follow
// the same rules as the HTTP layer.
func bindInto(dst interface{}, doc Document, fields []Field) error {
	filtered := make(Document, len(fields))
	for _, f := range fields {
		if v, ok := doc[f.Name]; ok && v != nil {
			filtered[f.Name] = v
		}
	}
	raw, err := json.Marshal(filtered)
	if err != nil {
		return apperrors.Wrap(apperrors.Validation, err, "unencodable payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.Wrap(apperrors.Validation, err, "malformed field value")
	}
	return nil
}

// marshalToDocument converts a tagged entity to its document form.
// Numbers are decoded as json.Number so 64-bit fingerprints survive
// the round trip without float truncation.
func marshalToDocument(v interface{}) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, err, "dump entity")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.Wrap(apperrors.Persistence, err, "dump entity")
	}
	return doc, nil
}
