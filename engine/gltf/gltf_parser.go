package gltf

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmgilman/go/errors"
)

// Common errors returned by the parser
var (
	ErrInvalidVersion    = errors.New(errors.CodeSchemaFailed, "invalid glTF version: must be 2.0")
	ErrInvalidGLBMagic   = errors.New(errors.CodeSchemaFailed, "invalid GLB magic number")
	ErrInvalidGLBVersion = errors.New(errors.CodeSchemaFailed, "invalid GLB version: must be 2")
	ErrMissingJSONChunk  = errors.New(errors.CodeSchemaFailed, "GLB file missing JSON chunk")
	ErrGLBTooSmall       = errors.New(errors.CodeSchemaFailed, "GLB file too small")
)

// Parse loads and parses a glTF/GLB file from the given path.
// Automatically detects .gltf (JSON) vs .glb (binary) format. Only the JSON structure is
// decoded; external and embedded buffer bytes are never read.
//
// Parameters:
//   - path: path to the glTF or GLB file
//
// Returns:
//   - *Document: the parsed document
//   - error: error if reading or parsing fails
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".glb" {
		return parseGLB(data)
	}
	return ParseBytes(data)
}

// ParseReader parses a glTF document from a reader.
// Use this when loading from embedded resources or network streams.
//
// Parameters:
//   - r: reader containing glTF JSON or GLB data
//   - isGLB: true if the data is in GLB format
//
// Returns:
//   - *Document: the parsed document
//   - error: error if parsing fails
func ParseReader(r io.Reader, isGLB bool) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	if isGLB {
		return parseGLB(data)
	}
	return parseJSON(data)
}

// ParseBytes parses glTF JSON or GLB data, sniffing the GLB magic number.
//
// Parameters:
//   - data: the raw file contents
//
// Returns:
//   - *Document: the parsed document
//   - error: error if parsing fails
func ParseBytes(data []byte) (*Document, error) {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic {
		return parseGLB(data)
	}
	return parseJSON(data)
}

// parseJSON parses a glTF JSON document.
func parseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, ErrInvalidVersion
	}

	return &doc, nil
}

// parseGLB walks the chunks of a GLB container and parses its JSON chunk.
// The BIN chunk is skipped: it is buffer 0 and is identified by position, not content.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func parseGLB(data []byte) (*Document, error) {
	if len(data) < 12 {
		return nil, ErrGLBTooSmall
	}

	r := bytes.NewReader(data)

	var header glbHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read GLB header: %w", err)
	}

	if header.Magic != glbMagic {
		return nil, ErrInvalidGLBMagic
	}
	if header.Version != glbVersion {
		return nil, ErrInvalidGLBVersion
	}

	var jsonData []byte
	for {
		var chunkHeader glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		if int64(chunkHeader.ChunkLength) > int64(r.Len()) {
			return nil, ErrGLBTooSmall
		}

		if chunkHeader.ChunkType != glbChunkJSON {
			if _, err := io.CopyN(io.Discard, r, int64(chunkHeader.ChunkLength)); err != nil {
				return nil, fmt.Errorf("failed to skip chunk data: %w", err)
			}
			continue
		}

		jsonData = make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, jsonData); err != nil {
			return nil, fmt.Errorf("failed to read chunk data: %w", err)
		}
	}

	if jsonData == nil {
		return nil, ErrMissingJSONChunk
	}

	return parseJSON(jsonData)
}
