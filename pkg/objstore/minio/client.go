package minio

import (
	"context"
	"flag"
	"io"
	"mime"
	"path"

	util_io "github.com/ValerySidorin/styx/pkg/util/io"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint          string `yaml:"endpoint"`
	MinioRootUser     string `yaml:"minio_root_user"`
	MinioRootPassword string `yaml:"minio_root_password"`
	Secure            bool   `yaml:"secure"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.Endpoint, flagPrefix+"minio.endpoint", "", `Minio endpoint, host:port.`)
	f.StringVar(&c.MinioRootUser, flagPrefix+"minio.root-user", "", `Minio access key.`)
	f.StringVar(&c.MinioRootPassword, flagPrefix+"minio.root-password", "", `Minio secret key.`)
	f.BoolVar(&c.Secure, flagPrefix+"minio.secure", false, `Use TLS to connect to minio.`)
}

type MinioWriter struct {
	client *minio.Client
	bucket string
}

func NewWriter(ctx context.Context, cfg Config, bucket string) (*MinioWriter, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "initialize minio client for writer")
	}

	found, err := minioClient.BucketExists(ctx, bucket)
	if err != nil {
		return nil, errors.Wrap(err, "check minio bucket exists")
	}

	if !found {
		if err := minioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, "make minio bucket")
		}
	}

	return &MinioWriter{
		client: minioClient,
		bucket: bucket,
	}, nil
}

func (c *MinioWriter) Store(ctx context.Context, objName string, r io.Reader) error {
	_, err := c.client.PutObject(ctx, c.bucket, objName, r, util_io.SizeOf(r), minio.PutObjectOptions{
		ContentType: contentType(objName),
	})
	if err != nil {
		return errors.Wrap(err, "store minio object")
	}

	return nil
}

func (c *MinioWriter) Exists(ctx context.Context, objName string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, objName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}

	return false, errors.Wrap(err, "stat minio object")
}

func contentType(objName string) string {
	if t := mime.TypeByExtension(path.Ext(objName)); t != "" {
		return t
	}
	return "application/octet-stream"
}
