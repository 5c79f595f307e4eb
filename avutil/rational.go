package avutil

import (
	"fmt"
	"math/big"
)

// Rational is AVRational. It is two consecutive C ints, so overlays load
// and store it directly from native structs.
type Rational struct {
	Num int32
	Den int32
}

// TimeBaseQ is AV_TIME_BASE_Q, the microsecond time base of fields
// such as AVFilterLink.current_pts_us.
var TimeBaseQ = Rational{1, 1000000}

// NewRational returns num/den unreduced.
func NewRational(num, den int32) Rational {
	return Rational{Num: num, Den: den}
}

// Valid reports whether the denominator is non-zero.
func (r Rational) Valid() bool { return r.Den != 0 }

// IsZero reports a zero numerator.
func (r Rational) IsZero() bool { return r.Num == 0 }

// Float64 is av_q2d. A zero denominator yields 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Invert is av_inv_q.
func (r Rational) Invert() Rational { return Rational{Num: r.Den, Den: r.Num} }

// Mul is av_mul_q, reduced. Products are formed in 64 bits.
func (r Rational) Mul(o Rational) Rational {
	return reduce(int64(r.Num)*int64(o.Num), int64(r.Den)*int64(o.Den))
}

// Div is av_div_q.
func (r Rational) Div(o Rational) Rational { return r.Mul(o.Invert()) }

// Cmp is av_cmp_q for valid operands: -1, 0 or 1.
func (r Rational) Cmp(o Rational) int {
	left := int64(r.Num) * int64(o.Den)
	right := int64(o.Num) * int64(r.Den)
	if (r.Den < 0) != (o.Den < 0) {
		left, right = right, left
	}
	switch {
	case left < right:
		return -1
	case left > right:
		return 1
	}
	return 0
}

// Reduce returns r in lowest terms with a positive denominator.
// A zero denominator is returned unchanged.
func (r Rational) Reduce() Rational {
	if r.Den == 0 {
		return r
	}
	return reduce(int64(r.Num), int64(r.Den))
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func reduce(num, den int64) Rational {
	if den == 0 {
		return Rational{Num: int32(num), Den: 0}
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs64(num), den)
	if g > 1 {
		num, den = num/g, den/g
	}
	// Scale down until both fit in a C int.
	for num > 1<<31-1 || num < -(1<<31) || den > 1<<31-1 {
		num, den = num/2, den/2
	}
	if den == 0 {
		den = 1
	}
	return Rational{Num: int32(num), Den: int32(den)}
}

// Rescale is av_rescale_q: a expressed in from, converted to to, rounded to
// the nearest value with halves away from zero. NoPTSValue and invalid
// time bases yield NoPTSValue.
func Rescale(a int64, from, to Rational) int64 {
	if a == NoPTSValue || from.Den == 0 || to.Num == 0 || to.Den == 0 {
		return NoPTSValue
	}
	num := new(big.Int).Mul(big.NewInt(a), big.NewInt(int64(from.Num)*int64(to.Den)))
	den := big.NewInt(int64(from.Den) * int64(to.Num))
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	half := new(big.Int).Rsh(den, 1)
	if num.Sign() >= 0 {
		num.Add(num, half)
	} else {
		num.Sub(num, half)
	}
	q := num.Quo(num, den)
	if !q.IsInt64() {
		return NoPTSValue
	}
	return q.Int64()
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
