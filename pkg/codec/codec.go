// Package codec reads and writes the private database file format.
//
// A database file starts with a six byte header:
//
//	"MVDB" | version (1 byte) | compression (1 byte)
//
// followed by the body, optionally zstd compressed. The body holds the show
// count as a uvarint and then one length-prefixed record per show. Records
// are protobuf wire messages; unknown fields are skipped when reading.
package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/shows"
)

// Version is the format version written by Encode.
const Version = 1

const format = "mvdb"

var magic = []byte("MVDB")

// Compression identifies the body encoding.
type Compression byte

// Body encodings.
const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
)

// record field numbers
const (
	fieldChannel protowire.Number = iota + 1
	fieldTopic
	fieldTitle
	fieldDate
	fieldTime
	fieldDuration
	fieldDescription
	fieldWebsite
	fieldURL
	fieldURLSmallOffset
	fieldURLSmallSuffix
	fieldURLLargeOffset
	fieldURLLargeSuffix
)

// maxRecordSize bounds a single record so corrupt length prefixes fail fast.
const maxRecordSize = 1 << 20

// Option configures Encode.
type Option func(*options)

type options struct {
	compression Compression
	level       zstd.EncoderLevel
}

// WithCompression enables or disables zstd compression of the body.
func WithCompression(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.compression = CompressionZstd
		} else {
			o.compression = CompressionNone
		}
	}
}

// WithLevel sets the zstd encoder level.
func WithLevel(level zstd.EncoderLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// Encode writes list to w.
func Encode(w io.Writer, list []shows.Show, opts ...Option) (err error) {
	o := &options{compression: CompressionZstd, level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(o)
	}

	header := append(bytes.Clone(magic), Version, byte(o.compression))
	if _, err := w.Write(header); err != nil {
		return errors.WrapIO("write", "header", err)
	}

	body := w
	if o.compression == CompressionZstd {
		enc, zerr := zstd.NewWriter(w, zstd.WithEncoderLevel(o.level))
		if zerr != nil {
			return errors.WrapResource("create", "zstd encoder", "", zerr)
		}
		defer func() {
			if cerr := enc.Close(); cerr != nil && err == nil {
				err = errors.WrapIO("write", "body", cerr)
			}
		}()
		body = enc
	}

	bw := bufio.NewWriter(body)
	buf := protowire.AppendVarint(nil, uint64(len(list)))
	if _, err := bw.Write(buf); err != nil {
		return errors.WrapIO("write", "body", err)
	}

	var rec []byte
	for i := range list {
		rec = appendShow(rec[:0], &list[i])
		buf = protowire.AppendVarint(buf[:0], uint64(len(rec)))
		if _, err := bw.Write(buf); err != nil {
			return errors.WrapIO("write", "body", err)
		}
		if _, err := bw.Write(rec); err != nil {
			return errors.WrapIO("write", "body", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.WrapIO("write", "body", err)
	}
	return nil
}

// Decode reads a show list written by Encode.
func Decode(r io.Reader) ([]shows.Show, error) {
	header := make([]byte, len(magic)+2)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.NewParseError(format, "header", "truncated header", err)
	}
	if !bytes.Equal(header[:len(magic)], magic) {
		return nil, errors.NewParseError(format, "header", "bad magic", nil)
	}
	if v := header[len(magic)]; v != Version {
		return nil, &errors.ParseError{
			Format:  format,
			Source:  "header",
			Offset:  int64(len(magic)),
			Message: "unsupported version " + strconv.Itoa(int(v)),
		}
	}

	var body io.Reader
	switch Compression(header[len(magic)+1]) {
	case CompressionNone:
		body = r
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.NewParseError(format, "body", "invalid zstd stream", err)
		}
		defer dec.Close()
		body = dec
	default:
		return nil, errors.NewParseError(format, "header", "unknown compression", nil)
	}

	br := bufio.NewReader(body)
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errors.NewParseError(format, "body", "missing record count", err)
	}

	// the count is untrusted, cap the preallocation
	list := make([]shows.Show, 0, min(count, 1<<16))
	var rec []byte
	for i := uint64(0); i < count; i++ {
		size, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, recordError(i, "truncated record length", err)
		}
		if size > maxRecordSize {
			return nil, recordError(i, "record too large", nil)
		}
		if cap(rec) < int(size) {
			rec = make([]byte, size)
		}
		rec = rec[:size]
		if _, err := io.ReadFull(br, rec); err != nil {
			return nil, recordError(i, "truncated record", err)
		}

		var show shows.Show
		if err := consumeShow(rec, &show); err != nil {
			return nil, recordError(i, err.Error(), err)
		}
		list = append(list, show)
	}

	return list, nil
}

func recordError(i uint64, message string, err error) error {
	return &errors.ParseError{
		Format:  format,
		Source:  "record",
		Offset:  int64(i) + 1,
		Message: message,
		Err:     err,
	}
}

func appendShow(b []byte, s *shows.Show) []byte {
	b = appendString(b, fieldChannel, s.Channel)
	b = appendString(b, fieldTopic, s.Topic)
	b = appendString(b, fieldTitle, s.Title)
	b = appendVarint(b, fieldDate, protowire.EncodeZigZag(int64(s.Date)))
	b = appendVarint(b, fieldTime, protowire.EncodeZigZag(int64(s.Time)))
	b = appendVarint(b, fieldDuration, protowire.EncodeZigZag(int64(s.Duration)))
	b = appendString(b, fieldDescription, s.Description)
	b = appendString(b, fieldWebsite, s.Website)
	b = appendString(b, fieldURL, s.URL)
	b = appendVarint(b, fieldURLSmallOffset, uint64(s.URLSmallOffset))
	b = appendString(b, fieldURLSmallSuffix, s.URLSmallSuffix)
	b = appendVarint(b, fieldURLLargeOffset, uint64(s.URLLargeOffset))
	b = appendString(b, fieldURLLargeSuffix, s.URLLargeSuffix)
	return b
}

// zero values are omitted
func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func consumeShow(b []byte, s *shows.Show) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && isString(num):
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			*stringField(s, num) = v

		case typ == protowire.VarintType && isVarint(num):
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			setVarint(s, num, v)

		case isString(num) || isVarint(num):
			return fmt.Errorf("unexpected wire type %d for field %d", typ, num)

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func isString(num protowire.Number) bool {
	switch num {
	case fieldChannel, fieldTopic, fieldTitle, fieldDescription, fieldWebsite,
		fieldURL, fieldURLSmallSuffix, fieldURLLargeSuffix:
		return true
	}
	return false
}

func isVarint(num protowire.Number) bool {
	switch num {
	case fieldDate, fieldTime, fieldDuration, fieldURLSmallOffset, fieldURLLargeOffset:
		return true
	}
	return false
}

func stringField(s *shows.Show, num protowire.Number) *string {
	switch num {
	case fieldChannel:
		return &s.Channel
	case fieldTopic:
		return &s.Topic
	case fieldTitle:
		return &s.Title
	case fieldDescription:
		return &s.Description
	case fieldWebsite:
		return &s.Website
	case fieldURL:
		return &s.URL
	case fieldURLSmallSuffix:
		return &s.URLSmallSuffix
	default:
		return &s.URLLargeSuffix
	}
}

func setVarint(s *shows.Show, num protowire.Number, v uint64) {
	switch num {
	case fieldDate:
		s.Date = shows.Date(protowire.DecodeZigZag(v))
	case fieldTime:
		s.Time = time.Duration(protowire.DecodeZigZag(v))
	case fieldDuration:
		s.Duration = time.Duration(protowire.DecodeZigZag(v))
	case fieldURLSmallOffset:
		s.URLSmallOffset = uint16(v)
	case fieldURLLargeOffset:
		s.URLLargeOffset = uint16(v)
	}
}
