package common

// Coalesce picks the first setting in values that is not its type's zero value, so an
// override left empty falls through to the next candidate. It returns the zero value
// when every candidate is empty.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
