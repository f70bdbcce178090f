package spectral

import (
	"errors"
	"math"
	"math/bits"
	"math/cmplx"
	"sync"
)

// ErrEmptyTransform is returned when a transform of size zero is requested.
// A zero-length transform is a caller bug, never silently tolerated.
var ErrEmptyTransform = errors.New("spectral: transform size must be positive")

// Fourier computes discrete Fourier transforms of arbitrary size.
//
// Power-of-two sizes run through an iterative radix-2 Cooley-Tukey path.
// Every other size is handled with Bluestein's algorithm, which re-expresses
// the transform as a circular convolution of the next power-of-two size
// >= 2N-1, so all sizes stay O(N log N). Callers never select the path;
// dispatch is internal.
//
// The convolution kernels Bluestein needs are memoized per transform size
// behind a read-mostly cache, so a Fourier is safe for concurrent use.
type Fourier struct {
	mu    sync.RWMutex
	plans map[int]*chirpPlan
}

// chirpPlan holds the precomputed chirp sequence and transformed
// convolution kernel for one Bluestein transform size.
type chirpPlan struct {
	n         int
	m         int          // convolution size, power of two >= 2n-1
	chirp     []complex128 // exp(-i*pi*k^2/n)
	kernelFFT []complex128 // forward transform of the mirrored conjugate chirp
}

// NewFourier creates a new transform engine
func NewFourier() *Fourier {
	return &Fourier{
		plans: make(map[int]*chirpPlan),
	}
}

// Forward computes the N-point discrete Fourier transform of x.
// The input is not modified.
func (f *Fourier) Forward(x []complex128) ([]complex128, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrEmptyTransform
	}

	out := make([]complex128, n)
	copy(out, x)

	if n == 1 {
		return out, nil
	}

	if isPowerOfTwo(n) {
		radix2InPlace(out)
		return out, nil
	}

	return f.bluestein(out), nil
}

// Inverse computes the inverse discrete Fourier transform of x.
// Forward followed by Inverse reconstructs the input to within
// floating-point tolerance.
func (f *Fourier) Inverse(x []complex128) ([]complex128, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrEmptyTransform
	}

	conjugated := make([]complex128, n)
	for i, v := range x {
		conjugated[i] = cmplx.Conj(v)
	}

	forward, err := f.Forward(conjugated)
	if err != nil {
		return nil, err
	}

	scale := 1.0 / float64(n)
	for i, v := range forward {
		forward[i] = complex(real(v)*scale, -imag(v)*scale)
	}

	return forward, nil
}

// ForwardReal computes the transform of a real-valued signal and returns
// only the first N/2+1 bins. The remaining bins are the conjugate mirror of
// these and carry no extra information.
//
// For even N the signal is packed into an N/2-point complex transform and
// unpacked with a twiddle pass, so a real transform costs roughly half of a
// complex one. Odd N falls back to the full complex transform.
func (f *Fourier) ForwardReal(x []float64) ([]complex128, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrEmptyTransform
	}

	if n == 1 {
		return []complex128{complex(x[0], 0)}, nil
	}

	if n%2 != 0 {
		buf := make([]complex128, n)
		for i, v := range x {
			buf[i] = complex(v, 0)
		}
		full, err := f.Forward(buf)
		if err != nil {
			return nil, err
		}
		return full[:n/2+1], nil
	}

	// Pack even samples into real parts and odd samples into imaginary parts
	half := n / 2
	packed := make([]complex128, half)
	for k := range half {
		packed[k] = complex(x[2*k], x[2*k+1])
	}

	z, err := f.Forward(packed)
	if err != nil {
		return nil, err
	}

	// Separate the even/odd sub-transforms and recombine:
	// X[k] = E[k] + exp(-2*pi*i*k/N) * O[k]
	out := make([]complex128, half+1)
	out[0] = complex(real(z[0])+imag(z[0]), 0)
	out[half] = complex(real(z[0])-imag(z[0]), 0)
	for k := 1; k < half; k++ {
		a := z[k]
		b := cmplx.Conj(z[half-k])

		even := (a + b) * 0.5
		odd := (a - b) * complex(0, -0.5)

		phase := -2.0 * math.Pi * float64(k) / float64(n)
		w := complex(math.Cos(phase), math.Sin(phase))
		out[k] = even + w*odd
	}
	return out, nil
}

// bluestein computes an arbitrary-size transform via chirp-z convolution.
// x is consumed as scratch.
func (f *Fourier) bluestein(x []complex128) []complex128 {
	n := len(x)
	plan := f.plan(n)

	// Premultiply by the chirp and zero-pad to the convolution size
	a := make([]complex128, plan.m)
	for k := range n {
		a[k] = x[k] * plan.chirp[k]
	}

	radix2InPlace(a)
	for i := range a {
		a[i] *= plan.kernelFFT[i]
	}
	radix2InverseInPlace(a)

	out := x[:n]
	for k := range n {
		out[k] = a[k] * plan.chirp[k]
	}
	return out
}

// plan returns the memoized Bluestein plan for size n, building it on first use
func (f *Fourier) plan(n int) *chirpPlan {
	f.mu.RLock()
	p, ok := f.plans[n]
	f.mu.RUnlock()
	if ok {
		return p
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok = f.plans[n]; ok {
		return p
	}

	p = newChirpPlan(n)
	f.plans[n] = p
	return p
}

func newChirpPlan(n int) *chirpPlan {
	m := nextPowerOfTwo(2*n - 1)

	// chirp[k] = exp(-i*pi*k^2/n). The exponent is reduced mod 2n before
	// the trig call so large k^2 values don't lose precision.
	chirp := make([]complex128, n)
	for k := range n {
		phase := -math.Pi * float64((k*k)%(2*n)) / float64(n)
		chirp[k] = complex(math.Cos(phase), math.Sin(phase))
	}

	// The convolution kernel is the conjugate chirp, mirrored so that the
	// circular convolution lines up with the linear one.
	kernel := make([]complex128, m)
	kernel[0] = cmplx.Conj(chirp[0])
	for k := 1; k < n; k++ {
		c := cmplx.Conj(chirp[k])
		kernel[k] = c
		kernel[m-k] = c
	}
	radix2InPlace(kernel)

	return &chirpPlan{
		n:         n,
		m:         m,
		chirp:     chirp,
		kernelFFT: kernel,
	}
}

// radix2InPlace computes an in-place decimation-in-time transform.
// len(x) must be a power of two.
func radix2InPlace(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	shift := 64 - uint(bits.TrailingZeros64(uint64(n)))
	for i := range n {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if j > i {
			x[i], x[j] = x[j], x[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := -2.0 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for j := range half {
				phase := step * float64(j)
				w := complex(math.Cos(phase), math.Sin(phase))
				even := x[start+j]
				odd := x[start+j+half] * w
				x[start+j] = even + odd
				x[start+j+half] = even - odd
			}
		}
	}
}

// radix2InverseInPlace inverts radix2InPlace, including the 1/N scaling
func radix2InverseInPlace(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}

	for i, v := range x {
		x[i] = cmplx.Conj(v)
	}
	radix2InPlace(x)

	scale := 1.0 / float64(n)
	for i, v := range x {
		x[i] = complex(real(v)*scale, -imag(v)*scale)
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(uint64(n-1))
}
