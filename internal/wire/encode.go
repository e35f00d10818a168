package wire

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// NRZFreq is the line rate when every data bit is sent as three line bits.
const NRZFreq = 2400 * physic.KiloHertz

// nrz maps a byte to its 24 bit line pattern: each bit MSB->LSB becomes
// '110' for 1 and '100' for 0.
var nrz [256][3]byte

func init() {
	for v := 0; v < 256; v++ {
		out := uint32(0)
		for i := 7; i >= 0; i-- {
			tri := uint32(0b100)
			if (v>>i)&1 == 1 {
				tri = 0b110
			}
			out = (out << 3) | tri
		}
		nrz[v] = [3]byte{byte(out >> 16), byte(out >> 8), byte(out)}
	}
}

// ExpandNRZ writes the line pattern of src into dst, which must hold
// 3*len(src) bytes. It returns the number of bytes written.
func ExpandNRZ(dst, src []byte) int {
	for i, v := range src {
		copy(dst[i*3:i*3+3], nrz[v][:])
	}
	return len(src) * 3
}

// ResetBytes is the number of zero bytes needed at freq to hold the line low
// for at least reset.
func ResetBytes(freq physic.Frequency, reset time.Duration) int {
	if freq <= 0 {
		return 0
	}
	byteTime := 8 * freq.Period()
	return int((reset + byteTime - 1) / byteTime)
}
