package signer

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// gobCodec is a grpc/encoding.Codec that marshals request/response structs
// with encoding/gob instead of protobuf. Regenerating protobuf stubs from
// .proto sources requires invoking protoc, which is not available here;
// gob gives the same "plain Go struct over the wire" shape without a
// code-gen step, while keeping google.golang.org/grpc itself — the
// transport, the UDS story, interceptors, status codes — fully exercised.
//
// It registers itself under the name "proto": grpc defaults every call's
// content-subtype to "proto" when the caller doesn't set one, so this
// override takes effect for plain grpc.Dial/grpc.NewServer use without any
// extra per-call option.
type gobCodec struct{}

func init() {
	encoding.RegisterCodec(gobCodec{})
}

func (gobCodec) Name() string { return "proto" }

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("signer: gob marshal: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("signer: gob unmarshal: %w", err)
	}
	return nil
}
