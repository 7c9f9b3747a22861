package align

import (
	"math"

	"github.com/vedavani/vedavani/internal/pitch"
)

// diagonalPreference is subtracted from the diagonal step cost so that,
// all else equal, the warp path prefers matching frames one-to-one over
// stuttering through insertions and deletions.
const diagonalPreference = 0.01

// PathPoint pairs a reference frame index with a user frame index on the
// optimal warp path.
type PathPoint struct {
	Ref  int
	User int
}

// Warp aligns two pitch contours of possibly different lengths and
// speeds with full-matrix dynamic time warping. The pairwise cost is the
// absolute semitone difference between aligned frames; unvoiced frames
// contribute through [frameSemitone]'s zero, which keeps silence aligned
// to silence cheaply.
//
// The returned path is monotonic non-decreasing in both indices, starts
// at (0, 0), and ends at (len(ref)-1, len(user)-1). Cost is the total
// accumulated path cost. An empty input yields a nil path and cost 0.
func Warp(ref, user pitch.Contour) (path []PathPoint, cost float64) {
	n, m := len(ref.Frames), len(user.Frames)
	if n == 0 || m == 0 {
		return nil, 0
	}

	refST := contourSemitones(ref)
	userST := contourSemitones(user)

	// Accumulated cost matrix. Full matrix: the recordings are short
	// (one chant) and the backtracked path is the product.
	acc := make([][]float64, n)
	for i := range acc {
		acc[i] = make([]float64, m)
	}
	acc[0][0] = math.Abs(refST[0] - userST[0])
	for i := 1; i < n; i++ {
		acc[i][0] = acc[i-1][0] + math.Abs(refST[i]-userST[0])
	}
	for j := 1; j < m; j++ {
		acc[0][j] = acc[0][j-1] + math.Abs(refST[0]-userST[j])
	}
	for i := 1; i < n; i++ {
		for j := 1; j < m; j++ {
			d := math.Abs(refST[i] - userST[j])
			diag := acc[i-1][j-1] - diagonalPreference
			best := diag
			if acc[i-1][j] < best {
				best = acc[i-1][j]
			}
			if acc[i][j-1] < best {
				best = acc[i][j-1]
			}
			acc[i][j] = best + d
		}
	}

	// Backtrack from the final cell to the origin.
	path = []PathPoint{{Ref: n - 1, User: m - 1}}
	i, j := n-1, m-1
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag := acc[i-1][j-1] - diagonalPreference
			if diag <= acc[i-1][j] && diag <= acc[i][j-1] {
				i--
				j--
			} else if acc[i-1][j] <= acc[i][j-1] {
				i--
			} else {
				j--
			}
		}
		path = append(path, PathPoint{Ref: i, User: j})
	}
	reversePath(path)
	return path, acc[n-1][m-1]
}

// PathDeviation returns the mean absolute semitone difference along the
// warp path over point pairs where both frames are voiced, measured on
// the same register-normalized tracks the warp aligned, along with the
// number of such pairs. Zero pairs means the recordings share no voiced
// signal to compare; the deviation is then 0 and meaningless.
func PathDeviation(ref, user pitch.Contour, path []PathPoint) (dev float64, voicedPairs int) {
	refST := contourSemitones(ref)
	userST := contourSemitones(user)
	var sum float64
	for _, p := range path {
		if !ref.Frames[p.Ref].Voiced() || !user.Frames[p.User].Voiced() {
			continue
		}
		sum += math.Abs(refST[p.Ref] - userST[p.User])
		voicedPairs++
	}
	if voicedPairs == 0 {
		return 0, 0
	}
	return sum / float64(voicedPairs), voicedPairs
}

// contourSemitones converts a contour's frequencies to semitones
// relative to its own median voiced pitch, so two performances in
// different registers can still be compared by shape. Unvoiced frames
// map to 0.
func contourSemitones(c pitch.Contour) []float64 {
	ref := c.MedianFrequency(0)
	out := make([]float64, len(c.Frames))
	if ref <= 0 {
		return out
	}
	for i, f := range c.Frames {
		if f.Voiced() {
			out[i] = pitch.Semitones(f.Frequency, ref)
		}
	}
	return out
}

func reversePath(p []PathPoint) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}
