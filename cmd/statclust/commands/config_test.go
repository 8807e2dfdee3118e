package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/statclust"
	"github.com/hupe1980/statclust/blobstore"
	"github.com/hupe1980/statclust/source/csvfile"
	"github.com/hupe1980/statclust/source/htmltable"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", `
k: 4
max_iter: 50
seed: 7
workers: 2
zero_variance: epsilon
epsilon: 0.001
missing_metric: fail
source:
  csv: data/players.csv
  html: https://example.com/players/
  rate_limit: 0.5
  max_rows: 200
  raw_csv: data/players_raw.csv
store:
  kind: minio
  endpoint: localhost:9000
  bucket: stats
  prefix: runs/
snapshot:
  codec: msgpack
  compression: lz4
log:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.K)
	assert.Equal(t, 50, cfg.MaxIter)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(7), *cfg.Seed)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "epsilon", cfg.ZeroVariance)
	assert.InDelta(t, 0.001, cfg.Epsilon, 1e-12)
	assert.Equal(t, "fail", cfg.MissingMetric)
	assert.Equal(t, "https://example.com/players/", cfg.Source.HTML)
	assert.InDelta(t, 0.5, cfg.Source.RateLimit, 1e-12)
	assert.Equal(t, 200, cfg.Source.MaxRows)
	assert.Equal(t, "minio", cfg.Store.Kind)
	assert.Equal(t, "stats", cfg.Store.Bucket)
	assert.Equal(t, "msgpack", cfg.Snapshot.Codec)
	assert.Equal(t, "lz4", cfg.Snapshot.Compression)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.K)
	assert.Equal(t, statclust.DefaultMaxIter, cfg.MaxIter)
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, htmltable.DefaultMaxRows, cfg.Source.MaxRows)
	assert.NoError(t, cfg.Validate())

	partial := writeFile(t, "partial.yaml", "k: 3\n")
	cfg, err = LoadConfig(partial)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.K)
	assert.Equal(t, "go-json", cfg.Snapshot.Codec)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
zero_variance: ignore
snapshot:
  codec: xml
  compression: brotli
store:
  kind: s3
log:
  level: loud
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	for _, want := range []string{"ignore", "xml", "brotli", "bucket", "loud"} {
		assert.Contains(t, err.Error(), want)
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Loader(t *testing.T) {
	logger := statclust.NoopLogger()

	cfg := DefaultConfig()
	_, err := cfg.Loader(logger)
	assert.Error(t, err)

	cfg.Source.CSV = "players.csv"
	l, err := cfg.Loader(logger)
	require.NoError(t, err)
	assert.Equal(t, csvfile.Loader{Path: "players.csv"}, l)

	cfg.Source.CSV = ""
	cfg.Source.HTML = "https://example.com"
	l, err = cfg.Loader(logger)
	require.NoError(t, err)
	assert.IsType(t, &htmltable.Scraper{}, l)
}

func TestConfig_BlobStore(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Store.Path = t.TempDir()

	store, err := cfg.BlobStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)

	cfg.Store.Kind = "memory"
	store, err = cfg.BlobStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, store)

	cfg.Store.Kind = "tape"
	_, err = cfg.BlobStore(ctx)
	assert.Error(t, err)
}

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	seed := uint64(3)
	cfg.Seed = &seed

	opts, err := cfg.ClusterOptions(statclust.NoopLogger())
	require.NoError(t, err)
	assert.Len(t, opts, 6)

	snapOpts, err := cfg.SnapshotOptions()
	require.NoError(t, err)
	assert.Len(t, snapOpts, 2)
}
