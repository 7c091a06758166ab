package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding — вектор продукта, опубликованный во внешнее векторное хранилище.
type Embedding struct {
	ProductID int64
	Vector    []float32
	Payload   Payload
}

func NewEmbedding(productID int64, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ProductID: productID,
		Vector:    vector,
		Payload:   payload,
	}
}

func NewPayload(productID int64, generation string, modelVersion string) Payload {
	return Payload{
		"product_id":    productID,
		"generation":    generation,
		"created_at":    time.Now().UTC().UnixNano(),
		"model_version": modelVersion,
	}
}
