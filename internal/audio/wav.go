package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Format describes linear PCM sample layout.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// RealtimeSpeech is the PCM layout produced by the realtime synthesis service.
var RealtimeSpeech = Format{SampleRate: 24000, Channels: 1, BitsPerSample: 16}

func (f Format) withDefaults() Format {
	if f.SampleRate <= 0 {
		f.SampleRate = RealtimeSpeech.SampleRate
	}
	if f.Channels <= 0 {
		f.Channels = 1
	}
	if f.BitsPerSample <= 0 {
		f.BitsPerSample = 16
	}
	return f
}

func (f Format) blockAlign() int { return f.Channels * f.BitsPerSample / 8 }

// Duration returns the playback length of pcmBytes in seconds.
func (f Format) Duration(pcmBytes int) float64 {
	f = f.withDefaults()
	return float64(pcmBytes) / float64(f.SampleRate*f.blockAlign())
}

// wavHeader mirrors the canonical 44-byte RIFF/WAVE header for PCM data.
type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// EncodeWAV wraps raw little-endian PCM in a WAV container.
func EncodeWAV(pcm []byte, f Format) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	if err := WriteWAV(&buf, pcm, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAV writes pcm to out as a WAV stream.
func WriteWAV(out io.Writer, pcm []byte, f Format) error {
	f = f.withDefaults()
	if align := f.blockAlign(); align > 0 && len(pcm)%align != 0 {
		return fmt.Errorf("pcm length %d is not a multiple of block align %d", len(pcm), align)
	}
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(pcm)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.SampleRate * f.blockAlign()),
		BlockAlign:    uint16(f.blockAlign()),
		BitsPerSample: uint16(f.BitsPerSample),
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}
	if err := binary.Write(out, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if _, err := out.Write(pcm); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}

// WriteWAVFile writes pcm as a WAV file at path.
func WriteWAVFile(path string, pcm []byte, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(file, pcm, f); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// DataURL encodes a WAV payload as an inline data URL playable by mobile clients.
func DataURL(wav []byte) string {
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav)
}
