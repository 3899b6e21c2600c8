package wide

// Lanes is the width of the wide types.
const Lanes = 8

// I32x8 represents 8 int32 values for SIMD-style operations.
type I32x8 [Lanes]int32

// Add performs element-wise addition.
func (v I32x8) Add(other I32x8) I32x8 {
	var result I32x8
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

// Sub performs element-wise subtraction.
func (v I32x8) Sub(other I32x8) I32x8 {
	var result I32x8
	for i := range v {
		result[i] = v[i] - other[i]
	}
	return result
}

// MulAdd returns v + a*n element-wise.
func (v I32x8) MulAdd(a I32x8, n int32) I32x8 {
	var result I32x8
	for i := range v {
		result[i] = v[i] + a[i]*n
	}
	return result
}

// DivScalar performs element-wise truncating division by n.
// n must be positive.
func (v I32x8) DivScalar(n int32) I32x8 {
	var result I32x8
	for i := range v {
		result[i] = v[i] / n
	}
	return result
}

// ShrRound shifts every element right by s bits, rounding half up.
func (v I32x8) ShrRound(s uint) I32x8 {
	half := int32(1) << (s - 1)
	var result I32x8
	for i := range v {
		result[i] = (v[i] + half) >> s
	}
	return result
}

// Lookup maps every element through table.
// Elements must be valid indices.
func (v I32x8) Lookup(table []uint8) I32x8 {
	var result I32x8
	for i := range v {
		result[i] = int32(table[v[i]])
	}
	return result
}
