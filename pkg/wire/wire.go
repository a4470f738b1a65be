// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package wire implements spec §6's IRDocument wire format: each
// record is a 4-byte big-endian length prefix followed by that many
// bytes of MessagePack, so a cache directory can hold a sequence of
// records without a separate index.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kraklabs/irengine/pkg/ir"
)

const maxRecordBytes = 256 << 20 // 256 MiB, guards against a corrupt length prefix

// EncodeIRDocument writes one length-prefixed MessagePack record for
// doc to w.
func EncodeIRDocument(w io.Writer, doc *ir.IRDocument) error {
	return encodeRecord(w, doc)
}

// DecodeIRDocument reads one length-prefixed MessagePack record from
// r into an *ir.IRDocument.
func DecodeIRDocument(r io.Reader) (*ir.IRDocument, error) {
	var doc ir.IRDocument
	if err := decodeRecord(r, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeGlobalContext writes one length-prefixed MessagePack record
// for gctx to w.
func EncodeGlobalContext(w io.Writer, gctx *ir.GlobalContext) error {
	return encodeRecord(w, gctx)
}

// DecodeGlobalContext reads one length-prefixed MessagePack record
// from r into an *ir.GlobalContext.
func DecodeGlobalContext(r io.Reader) (*ir.GlobalContext, error) {
	var gctx ir.GlobalContext
	if err := decodeRecord(r, &gctx); err != nil {
		return nil, err
	}
	return &gctx, nil
}

func encodeRecord(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("wire: encode: %w", err)
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(buf.Len()))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("wire: write length prefix: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("wire: write record: %w", err)
	}
	return nil
}

func decodeRecord(r io.Reader, v any) error {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return fmt.Errorf("wire: read length prefix: %w", err)
	}
	size := binary.BigEndian.Uint32(lenPrefix[:])
	if size > maxRecordBytes {
		return fmt.Errorf("wire: record of %d bytes exceeds max of %d", size, maxRecordBytes)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("wire: read record: %w", err)
	}

	dec := msgpack.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("wire: decode: %w", err)
	}
	return nil
}

// WriteIRDocumentFile writes doc to path as a single wire record,
// creating or truncating the file.
func WriteIRDocumentFile(path string, doc *ir.IRDocument) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wire: create %s: %w", path, err)
	}
	defer f.Close()
	return EncodeIRDocument(f, doc)
}

// ReadIRDocumentFile reads a single wire record from path into an
// *ir.IRDocument.
func ReadIRDocumentFile(path string) (*ir.IRDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wire: open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeIRDocument(f)
}
