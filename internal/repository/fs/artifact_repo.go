package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/jimlawless/whereami"
)

// ArtifactRepo хранит артефакты файлами в локальном каталоге.
// Запись идёт во временный файл с последующим rename, поэтому читатель не увидит частично записанный артефакт.
type ArtifactRepo struct {
	root string
}

func NewArtifactRepo(root string) (*ArtifactRepo, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &ArtifactRepo{root: root}, nil
}

func (a *ArtifactRepo) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	tmp, err := os.CreateTemp(a.root, name+".*.tmp")
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if err := tmp.Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := os.Rename(tmp.Name(), a.path(name)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (a *ArtifactRepo) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := os.ReadFile(a.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}

func (a *ArtifactRepo) path(name string) string {
	return filepath.Join(a.root, filepath.Base(name)+".json")
}
