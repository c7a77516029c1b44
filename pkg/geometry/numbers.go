package geometry

import "math"

// Uneven returns the closest odd value equal to or lower than n, with 0
// mapping to 1. Kernel sizes for blurring need this.
func Uneven(n int) int {
	if n == 0 {
		return 1
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

// CloseNr returns the multiple of m closest to n, preferring the multiple
// further from zero on ties.
func CloseNr(n, m int) int {
	if m == 0 {
		return n
	}
	q := n / m
	n1 := m * q
	var n2 int
	if n*m > 0 {
		n2 = m * (q + 1)
	} else {
		n2 = m * (q - 1)
	}
	if absInt(n-n1) < absInt(n-n2) {
		return n1
	}
	return n2
}

// MaxSteps finds the largest number of equal steps, below maxval, that
// divides value or one of the three values just under it. It returns the
// number of steps and the step size; for 100 with maxval 7 that is 5 steps
// of 20.
func MaxSteps(value, maxval int) (nsteps, stepsize int) {
	nsteps, stepsize = 1, value
	for val := value - 3; val <= value; val++ {
		for n := maxval - 1; n >= 1; n-- {
			if val%n != 0 {
				continue
			}
			if n > nsteps {
				nsteps = n
				stepsize = val / n
			}
			break
		}
	}
	return nsteps, stepsize
}

// Weights returns length exponentially decreasing weights w^length .. w^1
func Weights(w float64, length int) []float64 {
	if length <= 0 {
		return nil
	}
	out := make([]float64, 0, length)
	for i := length; i > 0; i-- {
		out = append(out, math.Pow(w, float64(i)))
	}
	return out
}

// SeqCount returns about n evenly spaced integers from start up to (not
// including) stop.
func SeqCount(start, stop, n int) []int {
	if n <= 0 || stop <= start {
		return nil
	}
	step := int(math.Ceil(float64(stop-start) / float64(n)))
	seq := make([]int, 0, n)
	for v := start; v < stop; v += step {
		seq = append(seq, v)
	}
	return seq
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
