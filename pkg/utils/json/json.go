// Package json provides a high-performance JSON serialization wrapper.
// It automatically uses sonic for supported architectures (amd64/arm64) and
// falls back to standard encoding/json for other platforms.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal encodes v into JSON bytes.
	// Uses sonic on amd64/arm64, otherwise falls back to encoding/json.
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	// Uses sonic on amd64/arm64, otherwise falls back to encoding/json.
	Unmarshal func(data []byte, v interface{}) error

	// MarshalString encodes v into a JSON string.
	MarshalString func(v interface{}) (string, error)

	// NewEncoder creates a new JSON encoder for the writer.
	NewEncoder func(w io.Writer) Encoder

	// NewDecoder creates a new JSON decoder for the reader.
	NewDecoder func(r io.Reader) Decoder

	// usingSonic indicates whether sonic is being used.
	usingSonic bool
)

// Encoder is a JSON encoder interface.
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder is a JSON decoder interface.
type Decoder interface {
	Decode(v interface{}) error
}

func init() {
	// Sonic only supports amd64 and arm64 architectures
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		Marshal = sonic.Marshal
		Unmarshal = sonic.Unmarshal
		MarshalString = sonic.MarshalString
		NewEncoder = func(w io.Writer) Encoder {
			return sonic.ConfigDefault.NewEncoder(w)
		}
		NewDecoder = func(r io.Reader) Decoder {
			return sonic.ConfigDefault.NewDecoder(r)
		}
		usingSonic = true
	} else {
		Marshal = stdjson.Marshal
		Unmarshal = stdjson.Unmarshal
		MarshalString = func(v interface{}) (string, error) {
			data, err := stdjson.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
		NewEncoder = func(w io.Writer) Encoder {
			return stdjson.NewEncoder(w)
		}
		NewDecoder = func(r io.Reader) Decoder {
			return stdjson.NewDecoder(r)
		}
		usingSonic = false
	}
}

// IsUsingSonic returns true if sonic is being used for JSON operations.
func IsUsingSonic() bool {
	return usingSonic
}
