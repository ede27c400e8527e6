// Package wavio reads and writes stereo WAV audio for the upmixing engine.
// Container validation goes through github.com/go-audio/wav the same way
// the engine this package is modeled on validates its input; because that
// library's buffer model targets integer PCM, actual sample decoding
// (including 32-bit IEEE-float input, which the library's IntBuffer can't
// represent) is done by a small direct-binary reader in the same spirit as
// this codebase's fast WAV writer, bypassing the general-purpose library on
// the hot path after it has already vouched for the container.
package wavio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"
)

const (
	formatTagPCM   = 1
	formatTagFloat = 3

	bitsPerByte = 8

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

// Stereo is the decoded, normalized stereo input. Samples are normalized to
// [-1, 1] regardless of source bit depth or format tag.
type Stereo struct {
	SampleRate int
	BitDepth   int
	L, R       []float64
}

// Read validates path as a WAV container and decodes it into normalized
// stereo samples. Only mono and stereo sources are accepted; mono sources
// are duplicated to both channels.
func Read(path string) (*Stereo, error) {
	sampleRate, bitDepth, channels, err := readMultichannel(path, 1, 2)
	if err != nil {
		return nil, err
	}
	l := channels[0]
	r := l
	if len(channels) == 2 {
		r = channels[1]
	}
	return &Stereo{SampleRate: sampleRate, BitDepth: bitDepth, L: l, R: r}, nil
}

// ReadMultichannel validates path as a WAV container and decodes every
// channel it carries, in file order. It is used to verify this package's
// own multichannel output in tests; the engine's input side only ever
// needs Read's mono/stereo-only contract.
func ReadMultichannel(path string) (sampleRate int, channels [][]float64, err error) {
	sampleRate, _, channels, err = readMultichannel(path, 1, 64)
	return sampleRate, channels, err
}

func readMultichannel(path string, minChannels, maxChannels int) (sampleRate, bitDepth int, channels [][]float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("wavio: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, 0, nil, fmt.Errorf("wavio: %s is not a valid WAV file", path)
	}
	format := dec.Format()
	if format.NumChannels < minChannels || format.NumChannels > maxChannels {
		return 0, 0, nil, fmt.Errorf("wavio: unsupported channel count %d", format.NumChannels)
	}
	bitDepth = int(dec.BitDepth)
	formatTag := int(dec.WavAudioFormat)
	if formatTag != formatTagPCM && formatTag != formatTagFloat {
		return 0, 0, nil, fmt.Errorf("wavio: unsupported WAV format tag %d", formatTag)
	}
	if formatTag == formatTagFloat && bitDepth != 32 {
		return 0, 0, nil, fmt.Errorf("wavio: float WAV must be 32-bit, got %d-bit", bitDepth)
	}
	if formatTag == formatTagPCM && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return 0, 0, nil, fmt.Errorf("wavio: unsupported PCM bit depth %d", bitDepth)
	}

	dataOffset, dataSize, err := locateDataChunk(f)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("wavio: %s: %w", path, err)
	}

	bytesPerSample := bitDepth / bitsPerByte
	frameSize := bytesPerSample * format.NumChannels
	numFrames := int(dataSize) / frameSize

	if _, err := f.Seek(dataOffset, io.SeekStart); err != nil {
		return 0, 0, nil, fmt.Errorf("wavio: seek to data: %w", err)
	}
	raw := make([]byte, numFrames*frameSize)
	if _, err := io.ReadFull(f, raw); err != nil {
		return 0, 0, nil, fmt.Errorf("wavio: read samples: %w", err)
	}

	channels = decodeFrames(raw, format.NumChannels, bitDepth, formatTag, numFrames)
	return format.SampleRate, bitDepth, channels, nil
}

func decodeFrames(raw []byte, numChannels, bitDepth, formatTag, numFrames int) [][]float64 {
	bytesPerSample := bitDepth / bitsPerByte
	frameSize := bytesPerSample * numChannels
	decode := sampleDecoder(bitDepth, formatTag)

	channels := make([][]float64, numChannels)
	for c := range channels {
		channels[c] = make([]float64, numFrames)
	}
	for i := 0; i < numFrames; i++ {
		base := i * frameSize
		for c := 0; c < numChannels; c++ {
			off := base + c*bytesPerSample
			channels[c][i] = decode(raw[off : off+bytesPerSample])
		}
	}
	return channels
}

// sampleDecoder returns a function decoding one little-endian sample of the
// given bit depth and format tag into a float64 normalized to [-1, 1].
func sampleDecoder(bitDepth, formatTag int) func([]byte) float64 {
	if formatTag == formatTagFloat {
		return func(b []byte) float64 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}
	}
	switch bitDepth {
	case 16:
		return func(b []byte) float64 {
			return float64(int16(binary.LittleEndian.Uint16(b))) / maxInt16
		}
	case 24:
		return func(b []byte) float64 {
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if b[2]&0x80 != 0 {
				v |= ^int32(0xFFFFFF)
			}
			return float64(v) / maxInt24
		}
	default: // 32-bit PCM
		return func(b []byte) float64 {
			return float64(int32(binary.LittleEndian.Uint32(b))) / maxInt32
		}
	}
}

// locateDataChunk scans a RIFF/WAVE file for the "data" subchunk and returns
// its byte offset and declared size, leaving f's position undefined.
func locateDataChunk(f *os.File) (offset int64, size uint32, err error) {
	if _, err = f.Seek(12, io.SeekStart); err != nil {
		return 0, 0, err
	}
	var header [8]byte
	for {
		if _, err = io.ReadFull(f, header[:]); err != nil {
			return 0, 0, fmt.Errorf("no data chunk found: %w", err)
		}
		id := string(header[0:4])
		chunkSize := binary.LittleEndian.Uint32(header[4:8])
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, 0, err
		}
		if id == "data" {
			return pos, chunkSize, nil
		}
		padded := int64(chunkSize)
		if padded%2 != 0 {
			padded++
		}
		if _, err = f.Seek(padded, io.SeekCurrent); err != nil {
			return 0, 0, err
		}
	}
}
