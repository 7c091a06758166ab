// Package artifact описывает версионированный контейнер для сериализованных моделей и индексов.
// Любой артефакт хранится как JSON-конверт: тег формата, версия, вид и полезная нагрузка.
// Несовпадение тега, версии или вида приводит к немедленной ошибке, а не к неверной интерпретации данных.
package artifact

import (
	"time"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/goccy/go-json"
)

const (
	// Format — тег формата контейнера.
	Format = "pie-artifact"
	// Version — текущая версия контейнера. Повышается при любом несовместимом изменении payload.
	Version = 1
)

// Kind — вид артефакта.
type Kind string

const (
	KindEmbeddings         Kind = "product_embeddings"
	KindIndex              Kind = "product_index"
	KindCategoryClassifier Kind = "category_classifier"
	KindTagModel           Kind = "tag_classifier"
)

// Envelope — заголовок контейнера и сырая полезная нагрузка.
type Envelope struct {
	Format    string          `json:"format"`
	Version   int             `json:"version"`
	Kind      Kind            `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Encode сериализует payload в контейнер указанного вида.
func Encode(kind Kind, payload any) ([]byte, error) {
	const op = "artifact.Encode"

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	data, err := json.Marshal(Envelope{
		Format:    Format,
		Version:   Version,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Payload:   raw,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return data, nil
}

// Decode проверяет заголовок контейнера и десериализует payload в out.
func Decode(data []byte, kind Kind, out any) (*Envelope, error) {
	const op = "artifact.Decode"

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, e.Wrap(op, e.ErrArtifactCorrupt)
	}

	switch {
	case env.Format != Format:
		return nil, e.Wrap(op, e.ErrFormatMismatch)
	case env.Version != Version:
		return nil, e.Wrap(op, e.ErrVersionMismatch)
	case env.Kind != kind:
		return nil, e.Wrap(op, e.ErrKindMismatch)
	case len(env.Payload) == 0:
		return nil, e.Wrap(op, e.ErrArtifactCorrupt)
	}

	if err := json.Unmarshal(env.Payload, out); err != nil {
		return nil, e.Wrap(op, e.ErrArtifactCorrupt)
	}

	return &env, nil
}
