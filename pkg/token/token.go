// Package token encodes diagram source text into the URL-safe tokens
// understood by PlantUML-compatible rendering servers.
//
// Three schemes are supported, matching the servers plantbeam talks to:
//
//   - [SchemeDeflate]: raw DEFLATE followed by PlantUML's own 6-bit
//     alphabet. This is the native protocol of self-hosted PlantUML
//     servers.
//   - [SchemeHex]: plain lowercase hex of the UTF-8 bytes. Longer URLs,
//     but the public plantuml.com server accepts it unconditionally
//     (prefixed with "~h" in the URL path).
//   - [SchemeKroki]: zlib-wrapped DEFLATE followed by standard URL-safe
//     base64, the protocol of kroki.io.
//
// Encoding is a pure function of the input: identical source always
// produces an identical token, so tokens double as content addresses for
// caching rendered images.
//
// The bit packing of [SchemeDeflate] is not published as a formal
// specification; it is validated against live servers rather than derived
// from a document. The Decode functions exist for round-trip tests and
// the decode debug command, not as proof of interoperability.
package token

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Scheme identifies a token encoding scheme.
type Scheme string

// Supported encoding schemes.
const (
	SchemeDeflate Scheme = "deflate"
	SchemeHex     Scheme = "hex"
	SchemeKroki   Scheme = "kroki"
)

// plantumlAlphabet is PlantUML's 6-bit alphabet. It orders digits after
// letters and uses "-_" instead of standard base64's "+/", so standard
// base64 tooling cannot produce or consume these tokens.
const plantumlAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Encode encodes source using the given scheme.
// Unknown schemes fall back to [SchemeDeflate].
func Encode(source string, scheme Scheme) string {
	switch scheme {
	case SchemeHex:
		return EncodeHex(source)
	case SchemeKroki:
		return EncodeKroki(source)
	default:
		return EncodeDeflate(source)
	}
}

// EncodeDeflate compresses source with raw DEFLATE at maximum compression
// and encodes the result with PlantUML's 6-bit alphabet.
//
// The server expects a raw DEFLATE stream: no zlib header, no trailing
// Adler-32 checksum.
func EncodeDeflate(source string) string {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.BestCompression)
	_, _ = w.Write([]byte(source))
	_ = w.Close()
	return encode6bit(buf.Bytes())
}

// EncodeHex encodes the UTF-8 bytes of source as lowercase hex.
func EncodeHex(source string) string {
	return hex.EncodeToString([]byte(source))
}

// EncodeKroki compresses source with zlib (header and checksum included)
// and encodes the result with standard URL-safe base64.
func EncodeKroki(source string) string {
	var buf bytes.Buffer
	w, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = w.Write([]byte(source))
	_ = w.Close()
	return base64.URLEncoding.EncodeToString(buf.Bytes())
}

// encode6bit packs bytes 3-at-a-time into 4 alphabet characters.
// A 2-byte tail emits 3 characters and a 1-byte tail emits 2, with the
// unused low bits zero-padded.
func encode6bit(data []byte) string {
	var sb strings.Builder
	sb.Grow((len(data)*4 + 2) / 3)

	for i := 0; i < len(data); i += 3 {
		switch {
		case i+2 < len(data):
			b1, b2, b3 := data[i], data[i+1], data[i+2]
			sb.WriteByte(plantumlAlphabet[b1>>2])
			sb.WriteByte(plantumlAlphabet[(b1&0x3)<<4|b2>>4])
			sb.WriteByte(plantumlAlphabet[(b2&0xF)<<2|b3>>6])
			sb.WriteByte(plantumlAlphabet[b3&0x3F])
		case i+1 < len(data):
			b1, b2 := data[i], data[i+1]
			sb.WriteByte(plantumlAlphabet[b1>>2])
			sb.WriteByte(plantumlAlphabet[(b1&0x3)<<4|b2>>4])
			sb.WriteByte(plantumlAlphabet[(b2&0xF)<<2])
		default:
			b1 := data[i]
			sb.WriteByte(plantumlAlphabet[b1>>2])
			sb.WriteByte(plantumlAlphabet[(b1&0x3)<<4])
		}
	}
	return sb.String()
}

// Decode reverses Encode for the given scheme.
func Decode(tok string, scheme Scheme) (string, error) {
	switch scheme {
	case SchemeHex:
		return DecodeHex(tok)
	case SchemeKroki:
		return DecodeKroki(tok)
	default:
		return DecodeDeflate(tok)
	}
}

// DecodeDeflate reverses [EncodeDeflate].
func DecodeDeflate(tok string) (string, error) {
	compressed, err := decode6bit(tok)
	if err != nil {
		return "", err
	}
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("inflate: %w", err)
	}
	return string(data), nil
}

// DecodeHex reverses [EncodeHex].
func DecodeHex(tok string) (string, error) {
	data, err := hex.DecodeString(tok)
	if err != nil {
		return "", fmt.Errorf("decode hex: %w", err)
	}
	return string(data), nil
}

// DecodeKroki reverses [EncodeKroki].
func DecodeKroki(tok string) (string, error) {
	compressed, err := base64.URLEncoding.DecodeString(tok)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("zlib header: %w", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("inflate: %w", err)
	}
	return string(data), nil
}

// decode6bit unpacks a PlantUML-alphabet token back into bytes.
// Tokens produced by encode6bit never end on a lone character, so a
// trailing group of 1 is rejected.
func decode6bit(tok string) ([]byte, error) {
	vals := make([]byte, len(tok))
	for i := 0; i < len(tok); i++ {
		idx := strings.IndexByte(plantumlAlphabet, tok[i])
		if idx < 0 {
			return nil, fmt.Errorf("invalid token character %q at offset %d", tok[i], i)
		}
		vals[i] = byte(idx)
	}

	out := make([]byte, 0, len(tok)*3/4)
	for i := 0; i < len(vals); i += 4 {
		rem := len(vals) - i
		if rem == 1 {
			return nil, fmt.Errorf("truncated token: trailing group of 1 character")
		}
		out = append(out, vals[i]<<2|vals[i+1]>>4)
		if rem >= 3 {
			out = append(out, vals[i+1]<<4|vals[i+2]>>2)
		}
		if rem >= 4 {
			out = append(out, vals[i+2]<<6|vals[i+3])
		}
	}
	return out, nil
}
