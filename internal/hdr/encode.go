// Package hdr defines the numeric conventions shared by every pass that
// writes or reads an intermediate lighting buffer: the fixed HDR divisor,
// the integer luma encoding and the final display transfer.
package hdr

import "deferred-renderer/internal/mathutil"

// Divisor scales linear radiance down before it is stored in a lighting
// attachment and back up when read. A power of two keeps the round trip exact.
const Divisor = 256.0

// HalfMax is the largest finite value of an RGBA16F attachment.
const HalfMax = 65504.0

// MaxEncodable is the largest absolute radiance that survives encoding.
const MaxEncodable = HalfMax * Divisor

const invDivisor = 1.0 / Divisor

func Encode(v float64) float64 { return v * invDivisor }

func Decode(v float64) float64 { return v * Divisor }

func EncodeVec(v mathutil.Vec3) mathutil.Vec3 { return v.Scale(invDivisor) }

func DecodeVec(v mathutil.Vec3) mathutil.Vec3 { return v.Scale(Divisor) }

// ClampRadiance limits accumulated radiance to what an attachment can hold.
// NaN components become zero.
func ClampRadiance(v mathutil.Vec3) mathutil.Vec3 {
	for i := range v {
		if v[i] != v[i] {
			v[i] = 0
		}
	}
	return v.Clamp(0, MaxEncodable)
}
