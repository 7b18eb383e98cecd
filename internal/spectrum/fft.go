// Package spectrum applies a radix-2 FFT to recorded time histories
// (dislocation velocity, defect population) to expose periodic or
// avalanche-like behaviour, kept in the same recursive shape the
// teacher used for its own state-history spectra.
package spectrum

import (
	"math"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform of data via a
// Cooley-Tukey radix-2 recursion. len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("spectrum: FFT requires power-of-2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PowerSpectrum returns the one-sided magnitude spectrum of data.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency returns the frequency, in units of sampleRate,
// carrying the largest power in data's spectrum, excluding the DC
// term at index 0.
func DominantFrequency(data []float64, sampleRate float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0
	}
	bestIdx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[bestIdx] {
			bestIdx = i
		}
	}
	return float64(bestIdx) * sampleRate / float64(len(data))
}

// NextPowerOfTwo rounds n up to the nearest power of two, the padding
// length spectrum callers need before calling FFT on a history whose
// length is not already a power of two.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// PadToPowerOfTwo returns data zero-padded on the right to the next
// power-of-two length, unless it is already such a length.
func PadToPowerOfTwo(data []float64) []float64 {
	target := NextPowerOfTwo(len(data))
	if target == len(data) {
		return data
	}
	padded := make([]float64, target)
	copy(padded, data)
	return padded
}
