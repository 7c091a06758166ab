package minio

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

const artifactContentType = "application/json"

// ArtifactRepo хранит артефакты движка объектами в бакете MinIO.
type ArtifactRepo struct {
	mc     *minio.Client
	bucket string
	prefix string
}

func NewArtifactRepo(mc *minio.Client, bucket, prefix string) *ArtifactRepo {
	return &ArtifactRepo{
		mc:     mc,
		bucket: bucket,
		prefix: prefix,
	}
}

// Save перезаписывает объект целиком; PutObject атомарен для читателей.
func (a *ArtifactRepo) Save(ctx context.Context, name string, data []byte) error {
	reader := bytes.NewReader(data)

	if _, err := a.mc.PutObject(ctx, a.bucket, a.key(name), reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: artifactContentType,
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Load читает объект; e.ErrArtifactNotFound, если его нет.
func (a *ArtifactRepo) Load(ctx context.Context, name string) ([]byte, error) {
	obj, err := a.mc.GetObject(ctx, a.bucket, a.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapNotFound(err))
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapNotFound(err))
	}

	return data, nil
}

func (a *ArtifactRepo) key(name string) string {
	return path.Join(a.prefix, name)
}

func mapNotFound(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return e.ErrArtifactNotFound
	}
	return err
}
