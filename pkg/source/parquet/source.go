// Package parquet reads dataset shards in parquet format through an
// in-memory duckdb instance.
package parquet

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ValerySidorin/styx/pkg/record"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
)

type Source struct {
	db        *sql.DB
	paths     []string
	class     string
	scanLimit int
}

func New(paths []string, class string, scanLimit int) (*Source, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(err, "parquet source open duckdb")
	}

	return &Source{
		db:        db,
		paths:     paths,
		class:     class,
		scanLimit: scanLimit,
	}, nil
}

func (s *Source) Records(ctx context.Context) ([]record.Record, error) {
	q, scan, err := s.query()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "parquet source query")
	}
	defer rows.Close()

	recs := make([]record.Record, 0)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "parquet source scan")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "parquet source read rows")
	}

	return recs, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}

type scanFunc func(rows *sql.Rows) (record.Record, error)

func (s *Source) query() (string, scanFunc, error) {
	var q string
	var scan scanFunc

	switch s.class {
	case record.ClassPackaging:
		q = fmt.Sprintf(`SELECT CAST(code AS VARCHAR), images, countries_tags FROM read_parquet(%s)`, fileList(s.paths))
		scan = scanProduct
	case record.ClassNutrition:
		q = fmt.Sprintf(`SELECT CAST(image_id AS VARCHAR), CAST(meta.barcode AS VARCHAR), CAST(meta.image_url AS VARCHAR) FROM read_parquet(%s)`, fileList(s.paths))
		scan = scanNutritionLabel
	default:
		return "", nil, errors.New(fmt.Sprintf("parquet source unknown record class: %q", s.class))
	}

	if s.scanLimit > 0 {
		q += fmt.Sprintf(" LIMIT %d", s.scanLimit)
	}

	return q + ";", scan, nil
}

func scanProduct(rows *sql.Rows) (record.Record, error) {
	var code sql.NullString
	var images, tags any
	if err := rows.Scan(&code, &images, &tags); err != nil {
		return nil, err
	}

	p := &record.Product{
		Code:          code.String,
		Images:        make([]record.Descriptor, 0),
		CountriesTags: make([]string, 0),
	}

	for _, v := range asList(images) {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		p.Images = append(p.Images, record.Descriptor{
			Key:     field(m, "key"),
			URL:     field(m, "url"),
			ImageID: field(m, "imgid"),
		})
	}

	for _, v := range asList(tags) {
		if t, ok := v.(string); ok {
			p.CountriesTags = append(p.CountriesTags, t)
		}
	}

	return p, nil
}

func scanNutritionLabel(rows *sql.Rows) (record.Record, error) {
	var id, barcode, url sql.NullString
	if err := rows.Scan(&id, &barcode, &url); err != nil {
		return nil, err
	}

	return &record.NutritionLabel{
		ImageID: id.String,
		Meta: record.NutritionMeta{
			Barcode:  barcode.String,
			ImageURL: url.String,
		},
	}, nil
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

// field stringifies a struct member. Image ids are integers in some dumps.
func field(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func fileList(paths []string) string {
	quoted := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.ReplaceAll(p, `\`, `/`)
		p = strings.ReplaceAll(p, "'", "''")
		quoted = append(quoted, fmt.Sprintf("'%s'", p))
	}
	return fmt.Sprintf("[%s]", strings.Join(quoted, ", "))
}
