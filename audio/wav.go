// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LoadWav decodes a PCM WAV stream into a named Data value ready for
// BindSound, following the WAVE PCM layout described at
// https://ccrma.stanford.edu/courses/422/projects/WaveFormat. r is expected
// to be opened and closed by the caller.
func LoadWav(name string, r io.Reader) (*Data, error) {
	var hdr wavHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("audio: invalid wav header: %w", err)
	}
	if string(hdr.RiffID[:]) != "RIFF" || string(hdr.WaveID[:]) != "WAVE" {
		return nil, fmt.Errorf("audio: %s: not a RIFF/WAVE file", name)
	}

	buf := make([]byte, hdr.DataSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("audio: %s: truncated wav data: %w", name, err)
	}

	d := &Data{Name: name}
	d.Set(hdr.Channels, hdr.SampleBits, hdr.Frequency, hdr.DataSize, buf)
	return d, nil
}

// wavHeader is the fixed 44-byte canonical PCM WAV header.
type wavHeader struct {
	RiffID      [4]byte
	FileSize    uint32
	WaveID      [4]byte
	Fmt         [4]byte
	FmtSize     uint32
	AudioFormat uint16
	Channels    uint16
	Frequency   uint32
	ByteRate    uint32
	BlockAlign  uint16
	SampleBits  uint16
	DataID      [4]byte
	DataSize    uint32
}
