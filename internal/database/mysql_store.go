package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	seq        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	collection VARCHAR(255) NOT NULL,
	id         VARCHAR(64) NOT NULL,
	body       JSON NOT NULL,
	created_at DATETIME(3) NOT NULL,
	UNIQUE KEY uq_documents_collection_id (collection, id),
	KEY idx_documents_collection_seq (collection, seq)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQLStore keeps every collection in the single "documents" table, one
// JSON body per row.  Filters and ordering run on JSON_EXTRACT of the body.
type MySQLStore struct{ DB *sql.DB }

func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{DB: db} }

// EnsureSchema creates the documents table when it does not exist.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (s *MySQLStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	id := newID()
	body, err := encodeBody(doc, id)
	if err != nil {
		return "", err
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body, created_at) VALUES (?,?,?,?)",
		collection, id, string(body), time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *MySQLStore) Set(ctx context.Context, collection, id string, doc any) error {
	body, err := encodeBody(doc, id)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body, created_at) VALUES (?,?,?,?) ON DUPLICATE KEY UPDATE body = VALUES(body)",
		collection, id, string(body), time.Now().UTC())
	return err
}

func (s *MySQLStore) Get(ctx context.Context, collection, id string, out any) error {
	var body []byte
	err := s.DB.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection=? AND id=? LIMIT 1",
		collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (s *MySQLStore) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	query, args, err := buildMerge(collection, id, fields)
	if err != nil {
		return err
	}
	if query == "" {
		var one int
		err := s.DB.QueryRowContext(ctx,
			"SELECT 1 FROM documents WHERE collection=? AND id=? LIMIT 1", collection, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM documents WHERE collection=? AND id=?", collection, id)
	return err
}

func (s *MySQLStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	query, args, err := buildFind(collection, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		var d Document
		var body []byte
		if err := rows.Scan(&d.ID, &body); err != nil {
			return nil, err
		}
		d.Body = body
		out = append(out, d)
	}
	return out, rows.Err()
}

var sqlOps = map[Op]string{Eq: "=", Gte: ">=", Lte: "<="}

// buildFind compiles q into a SELECT over the documents table.
func buildFind(collection string, q Query) (string, []any, error) {
	if err := checkQuery(q); err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	args := []any{collection}
	sb.WriteString("SELECT id, body FROM documents WHERE collection = ?")
	for _, f := range q.Filters {
		fmt.Fprintf(&sb, " AND JSON_UNQUOTE(JSON_EXTRACT(body, ?)) %s ?", sqlOps[f.Op])
		args = append(args, "$."+f.Field, f.Value)
	}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY JSON_UNQUOTE(JSON_EXTRACT(body, ?)) %s, seq", dir)
		args = append(args, "$."+q.OrderBy)
	} else {
		sb.WriteString(" ORDER BY seq")
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return sb.String(), args, nil
}

// buildMerge compiles a shallow merge into one JSON_SET update.  The query is
// empty when there is nothing to set.
func buildMerge(collection, id string, fields map[string]any) (string, []any, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if err := checkField(k); err != nil {
			return "", nil, err
		}
		if k != "id" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", nil, nil
	}
	sort.Strings(keys)

	var sb strings.Builder
	args := make([]any, 0, 2*len(keys)+2)
	sb.WriteString("UPDATE documents SET body = JSON_SET(body")
	for _, k := range keys {
		v, err := json.Marshal(fields[k])
		if err != nil {
			return "", nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		sb.WriteString(", ?, CAST(? AS JSON)")
		args = append(args, "$."+k, string(v))
	}
	sb.WriteString(") WHERE collection = ? AND id = ?")
	args = append(args, collection, id)
	return sb.String(), args, nil
}
