package consistency

import (
	"image"
	"math/bits"

	"github.com/disintegration/imaging"
)

// Fingerprint is a difference hash with 64 bits per colour channel.
type Fingerprint [3]uint64

// FingerprintBits is the number of bits in a Fingerprint.
const FingerprintBits = 3 * 64

const (
	hashW = 9
	hashH = 8
)

// Hash computes the fingerprint of img. The image is reduced to 9×8 pixels;
// each bit records whether a pixel is brighter than its right neighbour in
// one channel.
func Hash(img image.Image) Fingerprint {
	small := imaging.Resize(img, hashW, hashH, imaging.Box)
	var fp Fingerprint
	bit := 0
	for y := 0; y < hashH; y++ {
		for x := 0; x < hashW-1; x++ {
			i := small.PixOffset(x, y)
			j := small.PixOffset(x+1, y)
			for c := 0; c < 3; c++ {
				if small.Pix[i+c] > small.Pix[j+c] {
					fp[c] |= 1 << bit
				}
			}
			bit++
		}
	}
	return fp
}

// Distance returns the normalised Hamming distance between a and b.
func Distance(a, b Fingerprint) float64 {
	n := 0
	for c := range a {
		n += bits.OnesCount64(a[c] ^ b[c])
	}
	return float64(n) / FingerprintBits
}

// Identical reports whether a and b have the same size and pixels.
func Identical(a, b image.Image) bool {
	na, nb := imaging.Clone(a), imaging.Clone(b)
	if na.Bounds().Size() != nb.Bounds().Size() {
		return false
	}
	for i := range na.Pix {
		if na.Pix[i] != nb.Pix[i] {
			return false
		}
	}
	return true
}
