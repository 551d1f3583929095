package jwtkit

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Header holds the recognized JOSE header fields plus the full decoded object.
type Header struct {
	Alg string
	Kid string
	Typ string
	Raw map[string]any
}

// Decomposed is a token split into its three segments, with the first two
// decoded and structurally validated. The B64 fields preserve the original
// encoded bytes; signature verification must operate on those, never on a
// re-serialization of the decoded objects.
type Decomposed struct {
	Header       Header
	HeaderB64    string
	Payload      map[string]any
	PayloadB64   string
	SignatureB64 string
}

// SigningInput returns the exact bytes the signature covers.
func (d *Decomposed) SigningInput() string {
	return d.HeaderB64 + "." + d.PayloadB64
}

// Decompose splits a compact JWT into header, payload and signature.
// The input must be exactly three non-empty base64url segments separated by
// dots. The header and payload are decoded and parsed as JSON objects and
// their well-known fields are type-checked. No field is required to be
// present here; presence requirements belong to the claim validators.
func Decompose(token string) (*Decomposed, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &MalformedTokenError{Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts))}
	}
	for i, p := range parts {
		if p == "" {
			return nil, &MalformedTokenError{Reason: fmt.Sprintf("segment %d is empty", i+1)}
		}
		if !isBase64URL(p) {
			return nil, &MalformedTokenError{Reason: fmt.Sprintf("segment %d is not base64url", i+1)}
		}
	}

	headerObj, err := decodeSegment(parts[0])
	if err != nil {
		return nil, &MalformedTokenError{Reason: "invalid header segment", Err: err}
	}
	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, &MalformedTokenError{Reason: "invalid payload segment", Err: err}
	}

	header, err := validateHeader(headerObj)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	return &Decomposed{
		Header:       header,
		HeaderB64:    parts[0],
		Payload:      payload,
		PayloadB64:   parts[1],
		SignatureB64: parts[2],
	}, nil
}

func isBase64URL(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

func decodeSegment(seg string) (map[string]any, error) {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not a JSON object")
	}
	return obj, nil
}

func validateHeader(obj map[string]any) (Header, error) {
	h := Header{Raw: obj}
	for _, field := range []string{"alg", "kid", "typ"} {
		v, ok := obj[field]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return Header{}, &MalformedTokenError{Reason: fmt.Sprintf("header %q must be a string", field)}
		}
		switch field {
		case "alg":
			h.Alg = s
		case "kid":
			h.Kid = s
		case "typ":
			h.Typ = s
		}
	}
	return h, nil
}

func validatePayload(payload map[string]any) error {
	for _, field := range []string{"exp", "nbf", "iat"} {
		if v, ok := payload[field]; ok {
			if _, ok := v.(float64); !ok {
				return &MalformedTokenError{Reason: fmt.Sprintf("claim %q must be a number", field)}
			}
		}
	}
	for _, field := range []string{"iss", "sub", "scope", "jti"} {
		if v, ok := payload[field]; ok {
			if _, ok := v.(string); !ok {
				return &MalformedTokenError{Reason: fmt.Sprintf("claim %q must be a string", field)}
			}
		}
	}
	if v, ok := payload["aud"]; ok {
		switch aud := v.(type) {
		case string:
		case []any:
			for _, e := range aud {
				if _, ok := e.(string); !ok {
					return &MalformedTokenError{Reason: `claim "aud" must be a string or array of strings`}
				}
			}
		default:
			return &MalformedTokenError{Reason: `claim "aud" must be a string or array of strings`}
		}
	}
	return nil
}

// NumberClaim extracts a numeric claim from a decoded payload.
func NumberClaim(payload map[string]any, name string) (float64, bool) {
	v, ok := payload[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// StringClaim extracts a string claim from a decoded payload.
func StringClaim(payload map[string]any, name string) (string, bool) {
	v, ok := payload[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringsClaim extracts a claim that is either a single string or an array
// of strings, normalized to a slice. Used for "aud" and "cognito:groups".
func StringsClaim(payload map[string]any, name string) ([]string, bool) {
	v, ok := payload[name]
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case string:
		return []string{val}, true
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
