// Package snapshot moves container snapshot states to and from durable
// stores. Containers stay persistence agnostic, they only expose their
// Snapshot and Restore state, this package owns encoding and storage.
package snapshot

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/wecisecode/collections/errs"
)

// Codec turns snapshot states into bytes and back.
type Codec interface {
	Name() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

var (
	JSON    Codec = jsonCodec{}
	YAML    Codec = yamlCodec{}
	Msgpack Codec = msgpackCodec{}
	CBOR    Codec = cborCodec{}
)

// ByName resolves a codec by name or file extension.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "mp":
		return Msgpack, nil
	case "cbor":
		return CBOR, nil
	}
	return nil, errs.SnapshotError.New("unknown codec %q", name)
}

type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) Name() string {
	return "yaml"
}

func (yamlCodec) Marshal(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v interface{}) error {
	return yaml.Unmarshal(data, v)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string {
	return "msgpack"
}

// 编码器加入池复用，关闭紧凑数值并排序 map 键，保证编码结果稳定可比
func (msgpackCodec) Marshal(v interface{}) ([]byte, error) {
	enc := msgpack.GetEncoder()

	var buf bytes.Buffer
	enc.Reset(&buf)

	enc.UseCompactFloats(false)
	enc.UseCompactInts(false)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	b := buf.Bytes()

	msgpack.PutEncoder(enc)

	if err != nil {
		return nil, err
	}
	return b, nil
}

func (msgpackCodec) Unmarshal(data []byte, v interface{}) error {
	dec := msgpack.GetDecoder()

	dec.Reset(bytes.NewReader(data))
	err := dec.Decode(v)

	msgpack.PutDecoder(dec)

	return err
}

type cborCodec struct{}

var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func (cborCodec) Name() string {
	return "cbor"
}

func (cborCodec) Marshal(v interface{}) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

func (cborCodec) Unmarshal(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}
