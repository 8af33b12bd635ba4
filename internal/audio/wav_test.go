package audio

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := make([]byte, 480) // 10ms at 24kHz mono 16-bit
	wav, err := EncodeWAV(pcm, RealtimeSpeech)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	if len(wav) != 44+len(pcm) {
		t.Fatalf("len(wav) = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("unexpected chunk ids: %q %q %q", wav[0:4], wav[8:12], wav[36:40])
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Fatalf("sample rate = %d, want 24000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Fatalf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 48000 {
		t.Fatalf("byte rate = %d, want 48000", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("data size = %d, want %d", got, len(pcm))
	}
}

func TestEncodeWAVRejectsOddSampleBytes(t *testing.T) {
	if _, err := EncodeWAV([]byte{1, 2, 3}, RealtimeSpeech); err == nil {
		t.Fatalf("EncodeWAV() expected error for truncated sample")
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	wav, err := EncodeWAV([]byte{0, 0, 1, 0}, RealtimeSpeech)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	url := DataURL(wav)
	const prefix = "data:audio/wav;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("DataURL() = %q, missing prefix", url)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatalf("decode data url: %v", err)
	}
	if string(decoded) != string(wav) {
		t.Fatalf("decoded payload differs from wav")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := RealtimeSpeech.Duration(48000); got != 1.0 {
		t.Fatalf("Duration(48000) = %v, want 1.0", got)
	}
}
