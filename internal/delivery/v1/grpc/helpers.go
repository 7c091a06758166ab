package grpc

import (
	"errors"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/goccy/go-json"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrTitleRequired):
		return status.Error(codes.InvalidArgument, e.ErrTitleRequired.Error())
	case errors.Is(err, e.ErrInvalidLimit):
		return status.Error(codes.InvalidArgument, e.ErrInvalidLimit.Error())
	case errors.Is(err, e.ErrInvalidID):
		return status.Error(codes.InvalidArgument, e.ErrInvalidID.Error())
	case errors.Is(err, e.ErrStatusBadRequest):
		return status.Error(codes.InvalidArgument, e.ErrStatusBadRequest.Error())
	case errors.Is(err, e.ErrRebuildInProcess):
		return status.Error(codes.Aborted, e.ErrRebuildInProcess.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// decodeStruct переносит поля google.protobuf.Struct в dst по JSON-тегам.
func decodeStruct(in *structpb.Struct, dst any) error {
	if in == nil {
		return nil
	}

	data, err := protojson.Marshal(in)
	if err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// encodeStruct — обратное преобразование ответа в google.protobuf.Struct.
func encodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}

	return out, nil
}
