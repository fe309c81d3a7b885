package techconf

import (
	"fmt"
	"math/big"
)

// Scale converts coordinates between nanometers and RECT units. The value
// from "real scale" is the number of RECT units per nanometer: emitting RECT
// multiplies by it and consuming RECT divides by it, so the two directions
// are exact inverses for coordinates that divide evenly.
//
// The zero Scale is the identity.
type Scale struct {
	rat *big.Rat
}

// ParseScale parses a positive decimal or fraction such as "1", "0.5" or "1/4"
func ParseScale(s string) (Scale, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Scale{}, fmt.Errorf("invalid scale %q", s)
	}
	if r.Sign() <= 0 {
		return Scale{}, fmt.Errorf("scale must be positive, got %q", s)
	}
	return Scale{rat: r}, nil
}

// NewScale returns the scale num/den
func NewScale(num, den int64) Scale {
	return Scale{rat: big.NewRat(num, den)}
}

func (s Scale) value() *big.Rat {
	if s.rat == nil {
		return big.NewRat(1, 1)
	}
	return s.rat
}

// ToRect converts nanometers to RECT units, truncating toward zero
func (s Scale) ToRect(nm int64) int64 {
	r := s.value()
	v := new(big.Int).Mul(big.NewInt(nm), r.Num())
	return v.Quo(v, r.Denom()).Int64()
}

// FromRect converts RECT units to nanometers, rounding half away from zero
func (s Scale) FromRect(units int64) int64 {
	r := s.value()
	v := new(big.Int).Mul(big.NewInt(units), r.Denom())
	q, rem := new(big.Int).QuoRem(v, r.Num(), new(big.Int))

	twice := new(big.Int).Abs(rem)
	twice.Lsh(twice, 1)
	if twice.Cmp(r.Num()) >= 0 {
		if v.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q.Int64()
}

// Float64 returns the scale as a float
func (s Scale) Float64() float64 {
	f, _ := s.value().Float64()
	return f
}

func (s Scale) String() string {
	return s.value().RatString()
}
