package pgcast

// InputKind tells whether an Input holds raw text, a decoded value or nothing.
type InputKind byte

const (
	InputNull InputKind = iota
	InputRaw
	InputTyped
)

func (k InputKind) String() string {
	switch k {
	case InputNull:
		return "null"
	case InputRaw:
		return "raw"
	case InputTyped:
		return "typed"
	default:
		return "invalid"
	}
}

// Input is the argument to every decoder. The zero value is a SQL NULL.
type Input[T any] struct {
	kind  InputKind
	text  string
	value T
}

// Raw returns an Input holding text in the PostgreSQL text format.
func Raw[T any](s string) Input[T] {
	return Input[T]{kind: InputRaw, text: s}
}

// RawBytes is like Raw but a nil src is treated as SQL NULL.
func RawBytes[T any](src []byte) Input[T] {
	if src == nil {
		return Input[T]{}
	}
	return Input[T]{kind: InputRaw, text: string(src)}
}

// Typed returns an Input holding an already decoded value.
func Typed[T any](v T) Input[T] {
	return Input[T]{kind: InputTyped, value: v}
}

// NullInput returns an Input representing SQL NULL.
func NullInput[T any]() Input[T] {
	return Input[T]{}
}

func (in Input[T]) Kind() InputKind { return in.kind }

func (in Input[T]) IsNull() bool { return in.kind == InputNull }

// Text returns the raw text and whether the Input holds raw text.
func (in Input[T]) Text() (string, bool) {
	return in.text, in.kind == InputRaw
}

// Value returns the decoded value and whether the Input holds one.
func (in Input[T]) Value() (T, bool) {
	return in.value, in.kind == InputTyped
}
