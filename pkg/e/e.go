package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyVectors         = fmt.Errorf("empty vectors")
	ErrVectorEmbeddingEmpty = fmt.Errorf("vector embedding is empty")
	ErrTextVectorMismatch   = fmt.Errorf("text vector mismatch")
	ErrIndexDimension       = fmt.Errorf("vector dimension does not match index")
	ErrIndexMappingMismatch = fmt.Errorf("embedding map does not match index mapping")

	// Ошибки артефактов
	ErrArtifactNotFound = fmt.Errorf("artifact not found")
	ErrArtifactCorrupt  = fmt.Errorf("artifact is corrupt")
	ErrFormatMismatch   = fmt.Errorf("artifact format mismatch")
	ErrVersionMismatch  = fmt.Errorf("artifact version mismatch")
	ErrKindMismatch     = fmt.Errorf("artifact kind mismatch")

	// Ошибки моделей
	ErrNoTrainingData   = fmt.Errorf("no training data")
	ErrModelNotTrained  = fmt.Errorf("model is not trained")
	ErrUnknownEmbedder  = fmt.Errorf("unknown embedding provider")
	ErrMissingAPIKey    = fmt.Errorf("missing embedding api key")
	ErrRebuildInProcess = fmt.Errorf("rebuild already in progress")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest = fmt.Errorf("bad request")
	ErrTitleRequired    = fmt.Errorf("title is required")
	ErrInvalidLimit     = fmt.Errorf("limit must be positive")
	ErrInvalidID        = fmt.Errorf("invalid identifier")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
