package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-yaml"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/statclust"
	"github.com/hupe1980/statclust/blobstore"
	minioblob "github.com/hupe1980/statclust/blobstore/minio"
	s3blob "github.com/hupe1980/statclust/blobstore/s3"
	"github.com/hupe1980/statclust/codec"
	"github.com/hupe1980/statclust/internal/compress"
	"github.com/hupe1980/statclust/snapshot"
	"github.com/hupe1980/statclust/source"
	"github.com/hupe1980/statclust/source/csvfile"
	"github.com/hupe1980/statclust/source/htmltable"
)

// Config is the YAML configuration of the CLI.
type Config struct {
	K             int            `yaml:"k"`
	MaxIter       int            `yaml:"max_iter"`
	Seed          *uint64        `yaml:"seed,omitempty"`
	Workers       int            `yaml:"workers"`
	ZeroVariance  string         `yaml:"zero_variance"`
	Epsilon       float64        `yaml:"epsilon"`
	MissingMetric string         `yaml:"missing_metric"`
	Source        SourceConfig   `yaml:"source"`
	Store         StoreConfig    `yaml:"store"`
	Snapshot      SnapshotConfig `yaml:"snapshot"`
	Log           LogConfig      `yaml:"log"`
}

// SourceConfig selects where records come from. When both HTML and CSV are
// set, the CSV file is the fallback for a failed scrape.
type SourceConfig struct {
	CSV       string  `yaml:"csv"`
	HTML      string  `yaml:"html"`
	RateLimit float64 `yaml:"rate_limit"`
	MaxRows   int     `yaml:"max_rows"`
	RawCSV    string  `yaml:"raw_csv"`
}

// StoreConfig selects the snapshot store.
type StoreConfig struct {
	Kind      string `yaml:"kind"`
	Path      string `yaml:"path"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	DDBTable  string `yaml:"ddb_table"`
}

// SnapshotConfig selects how snapshots are encoded.
type SnapshotConfig struct {
	Codec       string `yaml:"codec"`
	Compression string `yaml:"compression"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		K:             5,
		MaxIter:       statclust.DefaultMaxIter,
		Workers:       1,
		ZeroVariance:  "fail",
		Epsilon:       statclust.DefaultEpsilon,
		MissingMetric: "zero",
		Source: SourceConfig{
			RateLimit: htmltable.DefaultRateLimit,
			MaxRows:   htmltable.DefaultMaxRows,
		},
		Store: StoreConfig{
			Kind: "local",
			Path: "data/snapshots",
		},
		Snapshot: SnapshotConfig{
			Codec:       "go-json",
			Compression: "zstd",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	var errs []error
	if _, err := statclust.ParseZeroVariancePolicy(c.ZeroVariance); err != nil {
		errs = append(errs, err)
	}
	if _, err := htmltable.ParseMissingMetricPolicy(c.MissingMetric); err != nil {
		errs = append(errs, err)
	}
	if _, ok := codec.ByName(c.Snapshot.Codec); !ok {
		errs = append(errs, fmt.Errorf("unknown codec %q (want one of %s)", c.Snapshot.Codec, strings.Join(codec.Names(), ", ")))
	}
	if _, err := compress.ParseType(c.Snapshot.Compression); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Kind {
	case "", "local", "memory":
	case "s3", "minio":
		if c.Store.Bucket == "" {
			errs = append(errs, fmt.Errorf("store kind %q requires a bucket", c.Store.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// Logger builds the structured logger writing to w.
func (c *Config) Logger(w io.Writer) *statclust.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return statclust.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return statclust.NewLogger(slog.NewTextHandler(w, opts))
}

// ClusterOptions translates the configuration into library options.
func (c *Config) ClusterOptions(logger *statclust.Logger) ([]statclust.Option, error) {
	policy, err := statclust.ParseZeroVariancePolicy(c.ZeroVariance)
	if err != nil {
		return nil, err
	}

	opts := []statclust.Option{
		statclust.WithMaxIter(c.MaxIter),
		statclust.WithWorkers(c.Workers),
		statclust.WithZeroVariancePolicy(policy),
		statclust.WithEpsilon(c.Epsilon),
		statclust.WithLogger(logger),
	}
	if c.Seed != nil {
		opts = append(opts, statclust.WithSeed(*c.Seed))
	}
	return opts, nil
}

// SnapshotOptions translates the snapshot section into snapshot options.
func (c *Config) SnapshotOptions() ([]snapshot.Option, error) {
	cd, ok := codec.ByName(c.Snapshot.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", c.Snapshot.Codec)
	}
	comp, err := compress.ParseType(c.Snapshot.Compression)
	if err != nil {
		return nil, err
	}
	return []snapshot.Option{snapshot.WithCodec(cd), snapshot.WithCompression(comp)}, nil
}

// Loader builds the record source. HTML is primary with CSV as fallback.
func (c *Config) Loader(logger *statclust.Logger) (source.Loader, error) {
	var csvLoader, htmlLoader source.Loader

	if c.Source.CSV != "" {
		csvLoader = csvfile.Loader{Path: c.Source.CSV}
	}
	if c.Source.HTML != "" {
		policy, err := htmltable.ParseMissingMetricPolicy(c.MissingMetric)
		if err != nil {
			return nil, err
		}
		htmlLoader = htmltable.New(c.Source.HTML,
			htmltable.WithRateLimit(c.Source.RateLimit, 1),
			htmltable.WithMaxRows(c.Source.MaxRows),
			htmltable.WithMissingMetricPolicy(policy),
			htmltable.WithLogger(logger.Logger),
		)
	}

	switch {
	case htmlLoader != nil && csvLoader != nil:
		return source.Fallback(htmlLoader, csvLoader, logger.Logger), nil
	case htmlLoader != nil:
		return htmlLoader, nil
	case csvLoader != nil:
		return csvLoader, nil
	default:
		return nil, errors.New("no record source configured (set source.csv or source.html)")
	}
}

// BlobStore builds the snapshot store.
func (c *Config) BlobStore(ctx context.Context) (blobstore.BlobStore, error) {
	sc := c.Store
	switch sc.Kind {
	case "", "local":
		return blobstore.NewLocalStore(sc.Path), nil

	case "memory":
		return blobstore.NewMemoryStore(), nil

	case "s3":
		var loadOpts []func(*awsconfig.LoadOptions) error
		if sc.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(sc.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if sc.Endpoint != "" {
				o.BaseEndpoint = aws.String(sc.Endpoint)
				o.UsePathStyle = true
			}
		})
		store := s3blob.NewStore(client, sc.Bucket, sc.Prefix)
		if sc.DDBTable == "" {
			return store, nil
		}

		baseURI := "s3://" + sc.Bucket
		if p := strings.Trim(sc.Prefix, "/"); p != "" {
			baseURI += "/" + p
		}
		return s3blob.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), sc.DDBTable, baseURI), nil

	case "minio":
		client, err := minio.New(sc.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
			Secure: sc.UseSSL,
			Region: sc.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create MinIO client: %w", err)
		}
		return minioblob.NewStore(client, sc.Bucket, sc.Prefix), nil

	default:
		return nil, fmt.Errorf("unknown store kind %q", sc.Kind)
	}
}
