package parquet

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeParquet(t *testing.T, name, selectSQL string) string {
	p := filepath.Join(t.TempDir(), name)

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf("COPY (%s) TO '%s' (FORMAT PARQUET);", selectSQL, p))
	require.NoError(t, err)

	return p
}

func TestRecordsProducts(t *testing.T) {
	p := writeParquet(t, "food.parquet", `
		SELECT '1234567890123' AS code, [{'key': '0', 'imgid': '3'}, {'key': '1', 'imgid': '4'}] AS images, ['en:canada'] AS countries_tags
		UNION ALL
		SELECT '42' AS code, [{'key': 'front_fr', 'imgid': '1'}] AS images, ['fr:france', 'fr:canada'] AS countries_tags`)

	s, err := New([]string{p}, record.ClassPackaging, 0)
	require.NoError(t, err)
	defer s.Close()

	recs, err := s.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byID := map[string]*record.Product{}
	for _, r := range recs {
		byID[r.Identifier()] = r.(*record.Product)
	}

	require.Contains(t, byID, "1234567890123")
	assert.Equal(t, []record.Descriptor{{Key: "0", ImageID: "3"}, {Key: "1", ImageID: "4"}}, byID["1234567890123"].Descriptors())
	assert.Equal(t, []string{"en:canada"}, byID["1234567890123"].Tags())

	require.Contains(t, byID, "42")
	assert.Equal(t, []string{"fr:france", "fr:canada"}, byID["42"].Tags())
}

func TestRecordsNutritionLabels(t *testing.T) {
	train := writeParquet(t, "train.parquet",
		`SELECT '0001' AS image_id, {'barcode': '1', 'image_url': 'https://img.example/1.jpg'} AS meta`)
	val := writeParquet(t, "val.parquet",
		`SELECT '0002' AS image_id, {'barcode': '2', 'image_url': 'https://img.example/2.png'} AS meta`)

	s, err := New([]string{train, val}, record.ClassNutrition, 0)
	require.NoError(t, err)
	defer s.Close()

	recs, err := s.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	urls := []string{recs[0].(*record.NutritionLabel).AssetURL(), recs[1].(*record.NutritionLabel).AssetURL()}
	assert.ElementsMatch(t, []string{"https://img.example/1.jpg", "https://img.example/2.png"}, urls)
}

func TestRecordsScanLimit(t *testing.T) {
	p := writeParquet(t, "food.parquet",
		`SELECT CAST(i AS VARCHAR) AS code, [{'key': '1'}] AS images, ['en:canada'] AS countries_tags FROM range(10) t(i)`)

	s, err := New([]string{p}, record.ClassPackaging, 4)
	require.NoError(t, err)
	defer s.Close()

	recs, err := s.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}

func TestRecordsMissingFile(t *testing.T) {
	s, err := New([]string{filepath.Join(t.TempDir(), "missing.parquet")}, record.ClassPackaging, 0)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Records(context.Background())
	assert.Error(t, err)
}

func TestFileList(t *testing.T) {
	assert.Equal(t, `['a.parquet', 'it''s.parquet', 'c:/x/y.parquet']`,
		fileList([]string{"a.parquet", "it's.parquet", `c:\x\y.parquet`}))
}
