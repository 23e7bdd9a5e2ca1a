package pipes

type Pair[A, B any] struct {
	First  A
	Second B
}

type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Either holds exactly one of a left or a right value.
type Either[L, R any] struct {
	left    L
	right   R
	isRight bool
}

func Left[L, R any](v L) Either[L, R] {
	return Either[L, R]{left: v}
}

func Right[L, R any](v R) Either[L, R] {
	return Either[L, R]{right: v, isRight: true}
}

func (e Either[L, R]) IsLeft() bool {
	return !e.isRight
}

func (e Either[L, R]) IsRight() bool {
	return e.isRight
}

// LeftValue returns the left value, or the zero L for a right.
func (e Either[L, R]) LeftValue() L {
	return e.left
}

// RightValue returns the right value, or the zero R for a left.
func (e Either[L, R]) RightValue() R {
	return e.right
}
