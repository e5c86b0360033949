// Package interp provides the fractional-read kernels used by delay lines and
// grain playback:
//
//   - [Linear2]:  2-point linear interpolation (grain reads, modulated taps)
//   - [Hermite4]: 4-point cubic Hermite (higher quality delay reads)
package interp
