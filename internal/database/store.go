package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get and Merge when no document has the id.
var ErrNotFound = errors.New("document not found")

// ErrInvalidField is returned when a filter, order or merge key is not a
// plain field name.
var ErrInvalidField = errors.New("invalid field name")

// Op is a comparison operator in a Filter.
type Op string

const (
	Eq  Op = "=="
	Gte Op = ">="
	Lte Op = "<="
)

// Filter compares one top-level field against a value.  Values compare as
// text, so timestamps in utils.TimestampLayout compare chronologically.
// Documents without the field never match.
type Filter struct {
	Field string
	Op    Op
	Value string
}

// Query selects documents of one collection.  Without OrderBy documents come
// back in insertion order.  Limit <= 0 means no limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Where returns a copy of q with an extra filter.
func (q Query) Where(field string, op Op, value string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

// Document is a stored record: its id and JSON body.  The body always
// carries the id under "id".
type Document struct {
	ID   string
	Body json.RawMessage
}

// Decode unmarshals the body into out.
func (d Document) Decode(out any) error {
	return json.Unmarshal(d.Body, out)
}

// Store is a schemaless document store organised in named collections.
// Sub-collections are addressed by path, see SubCollection.  Every call is a
// single attempt; there are no transactions spanning calls.
type Store interface {
	// Insert stores doc under a new random id and returns the id.
	Insert(ctx context.Context, collection string, doc any) (string, error)
	// Set creates or replaces the document with the given id.
	Set(ctx context.Context, collection, id string, doc any) error
	// Get decodes the document into out or returns ErrNotFound.
	Get(ctx context.Context, collection, id string, out any) error
	// Merge replaces the given top-level fields of an existing document.
	Merge(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document with the given id.  Deleting a missing
	// document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Find returns the documents matching q.
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
}

// SubCollection names the child collection of a document, e.g.
// SubCollection("leads", id, "timeline") == "leads/<id>/timeline".
func SubCollection(parent, id, name string) string {
	return parent + "/" + id + "/" + name
}

// DecodeAll decodes every document into a new T.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", d.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

var fieldName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func checkField(name string) error {
	if !fieldName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return nil
}

func checkQuery(q Query) error {
	for _, f := range q.Filters {
		if err := checkField(f.Field); err != nil {
			return err
		}
		switch f.Op {
		case Eq, Gte, Lte:
		default:
			return fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	if q.OrderBy != "" {
		return checkField(q.OrderBy)
	}
	return nil
}

func newID() string { return uuid.NewString() }

// encodeBody marshals doc as a JSON object and stamps the id into it.
func encodeBody(doc any, id string) (json.RawMessage, error) {
	fields, err := toFields(doc)
	if err != nil {
		return nil, err
	}
	idJSON, _ := json.Marshal(id)
	fields["id"] = idJSON
	return json.Marshal(fields)
}

func toFields(doc any) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	return fields, nil
}

// textValue renders a raw JSON value the way filters compare it: strings
// unquoted, everything else as its JSON text.  ok is false for missing or
// null values.
func textValue(raw json.RawMessage) (string, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", false
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return str, true
		}
	}
	return s, true
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MySQLStore)(nil)
)
