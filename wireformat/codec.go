package wireformat

import (
	"encoding/json"
	"fmt"

	"github.com/revrobotics/chupdater/domain/entities"
	"gopkg.in/yaml.v3"
)

// Format names a serialized bundle encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps "json", "yaml" or "yml" to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", s)
	}
}

// Wire flattens r into a ResultWire.
func Wire(r entities.Result) *ResultWire {
	w := &ResultWire{}
	EncodeResult(r, w)
	return w
}

// Encode serializes r in the given format.
func Encode(r entities.Result, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return EncodeJSON(r)
	case FormatYAML:
		return EncodeYAML(r)
	default:
		return nil, &CodecError{Op: "marshal", Format: string(format), Err: fmt.Errorf("unsupported format")}
	}
}

// Decode validates and deserializes a bundle in the given format.
func Decode(data []byte, format Format) (entities.Result, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML:
		return DecodeYAML(data)
	default:
		return entities.Result{}, &CodecError{Op: "unmarshal", Format: string(format), Err: fmt.Errorf("unsupported format")}
	}
}

func EncodeJSON(r entities.Result) ([]byte, error) {
	data, err := json.Marshal(Wire(r))
	if err != nil {
		return nil, &CodecError{Op: "marshal", Format: string(FormatJSON), Err: err}
	}
	return data, nil
}

// DecodeJSON validates data against Schema before decoding it.
func DecodeJSON(data []byte) (entities.Result, error) {
	if err := ValidateJSON(data); err != nil {
		return entities.Result{}, err
	}
	var w ResultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return entities.Result{}, &CodecError{Op: "unmarshal", Format: string(FormatJSON), Err: err}
	}
	return DecodeResult(&w), nil
}

func EncodeYAML(r entities.Result) ([]byte, error) {
	data, err := yaml.Marshal(Wire(r))
	if err != nil {
		return nil, &CodecError{Op: "marshal", Format: string(FormatYAML), Err: err}
	}
	return data, nil
}

// DecodeYAML validates data against Schema before decoding it.
func DecodeYAML(data []byte) (entities.Result, error) {
	var obj interface{}
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return entities.Result{}, &CodecError{Op: "unmarshal", Format: string(FormatYAML), Err: err}
	}
	// The validator expects encoding/json values.
	asJSON, err := json.Marshal(obj)
	if err != nil {
		return entities.Result{}, &CodecError{Op: "unmarshal", Format: string(FormatYAML), Err: err}
	}
	if err := ValidateJSON(asJSON); err != nil {
		return entities.Result{}, err
	}

	var w ResultWire
	if err := yaml.Unmarshal(data, &w); err != nil {
		return entities.Result{}, &CodecError{Op: "unmarshal", Format: string(FormatYAML), Err: err}
	}
	return DecodeResult(&w), nil
}
