package transfer

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// littleEndian is true if the host stores numbers little-endian, which is
// the byte order of payload buffers.
var littleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return []byte{}
	}
	if littleEndian {
		return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*float32Size)
	}
	b := make([]byte, len(v)*float32Size)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*float32Size:], math.Float32bits(f))
	}
	return b
}

func uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return []byte{}
	}
	if littleEndian {
		return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*uint32Size)
	}
	b := make([]byte, len(v)*uint32Size)
	for i, n := range v {
		binary.LittleEndian.PutUint32(b[i*uint32Size:], n)
	}
	return b
}

// aligned reports whether b may be viewed as a slice of 4-byte words.
func aligned(b []byte) bool {
	return littleEndian && uintptr(unsafe.Pointer(&b[0]))%4 == 0
}

func bytesFloat32(b []byte) []float32 {
	n := len(b) / float32Size
	if n == 0 {
		return nil
	}
	if aligned(b) {
		return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n)
	}
	v := make([]float32, n)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*float32Size:]))
	}
	return v
}

func bytesUint32(b []byte) []uint32 {
	n := len(b) / uint32Size
	if n == 0 {
		return nil
	}
	if aligned(b) {
		return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), n)
	}
	v := make([]uint32, n)
	for i := range v {
		v[i] = binary.LittleEndian.Uint32(b[i*uint32Size:])
	}
	return v
}
