// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

const chunkSamples = 8192

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	if err := writeHeader16(w, sampleRate, len(samples)); err != nil {
		return err
	}

	buf := make([]byte, 2*min(len(samples), chunkSamples))
	for i := 0; i < len(samples); i += chunkSamples {
		chunk := samples[i:min(i+chunkSamples, len(samples))]
		b := buf[:2*len(chunk)]
		for j, s := range chunk {
			binary.LittleEndian.PutUint16(b[2*j:], uint16(s))
		}
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("write wav data: %w", err)
		}
	}

	return nil
}

// WriteFloat writes float samples in [-1, 1] as mono 16-bit PCM.
// Values outside the range are clamped.
func WriteFloat(w io.Writer, sampleRate int, samples []float32) error {
	pcm := make([]int16, len(samples))
	for i, x := range samples {
		pcm[i] = FloatToInt16(x)
	}
	return WriteWAV16(w, sampleRate, pcm)
}

// FloatToInt16 clamps x to [-1, 1] and scales it to the int16 range,
// mirroring the 1/32768 scaling the decoder applies.
func FloatToInt16(x float32) int16 {
	switch {
	case x >= 32767.0/32768.0:
		return 32767
	case x <= -1:
		return -32768
	}
	return int16(x * 32768)
}

func writeHeader16(w io.Writer, sampleRate int, n int) error {
	const (
		channels      = 1
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)
	dataSize := uint32(n * blockAlign)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}
