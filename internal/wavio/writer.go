package wavio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// A 32-bit float fmt subchunk carries an extra cbSize field PCM's doesn't,
// so this header is 46 bytes, two longer than the integer writer's fixed
// 44-byte one.
const (
	wavHeaderSize        = 46
	wavFloatSubchunkSize = 18
	wavRiffHeaderSize    = wavHeaderSize - 8
	wavFileSizeOffset    = 4
	wavDataSizeOffset    = 42
	wavWriterBufferSize  = 256 * 1024

	bytesPerFloat32 = 4
)

// fastWriter writes 32-bit IEEE-float PCM directly without per-sample
// allocations, the same direct-binary approach as the integer WAV writer
// this package is modeled on, extended to float samples and format tag 3.
type fastWriter struct {
	w          *bufio.Writer
	f          *os.File
	sampleRate int
	channels   int
	dataSize   uint32
	byteBuf    []byte
}

func newFastWriter(f *os.File, sampleRate, channels int) (*fastWriter, error) {
	w := &fastWriter{
		w:          bufio.NewWriterSize(f, wavWriterBufferSize),
		f:          f,
		sampleRate: sampleRate,
		channels:   channels,
	}
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *fastWriter) writeHeader() error {
	byteRate := w.sampleRate * w.channels * bytesPerFloat32
	blockAlign := w.channels * bytesPerFloat32

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavFloatSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], formatTagFloat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], 32)
	binary.LittleEndian.PutUint16(header[36:38], 0) // cbSize, no extension

	copy(header[38:42], "data")
	binary.LittleEndian.PutUint32(header[42:46], 0)

	_, err := w.w.Write(header)
	return err
}

// WriteInterleaved writes one block of interleaved float32 frames.
func (w *fastWriter) WriteInterleaved(samples []float32) error {
	needed := len(samples) * bytesPerFloat32
	if len(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	buf := w.byteBuf[:needed]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*bytesPerFloat32:], float32bits(s))
	}
	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

func (w *fastWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	fileSize := uint32(wavRiffHeaderSize) + w.dataSize

	if _, err := w.f.Seek(wavFileSizeOffset, io.SeekStart); err != nil {
		return err
	}
	sizeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBytes, fileSize)
	if _, err := w.f.Write(sizeBytes); err != nil {
		return err
	}

	if _, err := w.f.Seek(wavDataSizeOffset, io.SeekStart); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(sizeBytes, w.dataSize)
	if _, err := w.f.Write(sizeBytes); err != nil {
		return err
	}
	return nil
}

// Write interleaves channels into 32-bit float PCM and writes them
// atomically to path: a temp file in the same directory is written in
// full, then renamed into place. On any failure the temp file is removed
// so a failed run never leaves a partial or corrupt sink behind.
func Write(path string, sampleRate int, channels [][]float64) error {
	if len(channels) == 0 {
		return fmt.Errorf("wavio: no channels to write")
	}
	numChannels := len(channels)
	numFrames := len(channels[0])
	for _, c := range channels {
		if len(c) != numFrames {
			return fmt.Errorf("wavio: channel length mismatch")
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".upmixer-*.wav.tmp")
	if err != nil {
		return fmt.Errorf("wavio: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	succeeded := false
	defer func() {
		if !succeeded {
			_ = os.Remove(tmpPath)
		}
	}()

	fw, err := newFastWriter(tmp, sampleRate, numChannels)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("wavio: create writer: %w", err)
	}

	const blockFrames = 4096
	block := make([]float32, blockFrames*numChannels)
	for start := 0; start < numFrames; start += blockFrames {
		end := start + blockFrames
		if end > numFrames {
			end = numFrames
		}
		n := end - start
		for i := 0; i < n; i++ {
			for c := 0; c < numChannels; c++ {
				block[i*numChannels+c] = float32(clamp(channels[c][start+i]))
			}
		}
		if err := fw.WriteInterleaved(block[:n*numChannels]); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("wavio: write samples: %w", err)
		}
	}

	if err := fw.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("wavio: finalize header: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("wavio: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("wavio: rename into place: %w", err)
	}
	succeeded = true
	return nil
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func float32bits(f float32) uint32 {
	return math.Float32bits(f)
}
