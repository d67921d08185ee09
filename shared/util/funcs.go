package util

// Lerp realiza interpolação linear entre dois floats.
func Lerp(start, end, amount float32) float32 {
	return start + amount*(end-start)
}

// Max retorna o maior de dois ints.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min retorna o menor de dois ints.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Clamp limita v ao intervalo [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
