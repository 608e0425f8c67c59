// Package codec は gRPC で JSON をやり取りするためのコーデックを提供します。
package codec

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Name は content-subtype として使うコーデック名です。
const Name = "json"

// JSON は encoding.Codec を JSON で実装します。
type JSON struct{}

// Marshal は v を JSON に変換します。
func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal は JSON を v に読み込みます。
func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name はコーデック名を返します。
func (JSON) Name() string {
	return Name
}

func init() {
	encoding.RegisterCodec(JSON{})
}
