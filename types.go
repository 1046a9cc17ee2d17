package gracejoin

// Type identifies the column types a Value can hold.
type Type int

const (
	IntType Type = iota
	LongType
	FloatType
	BoolType
	StringType
)

func (t Type) String() string {
	switch t {
	case IntType:
		return "int"
	case LongType:
		return "long"
	case FloatType:
		return "float"
	case BoolType:
		return "bool"
	case StringType:
		return "string"
	default:
		return "unknown"
	}
}

// fixedSize is the on-page width of t in bytes. StringType has no fixed
// width; its width comes from the column declaration.
func (t Type) fixedSize() int {
	switch t {
	case IntType, FloatType:
		return 4
	case LongType:
		return 8
	case BoolType:
		return 1
	default:
		return 0
	}
}

func (t Type) valid() bool {
	return t >= IntType && t <= StringType
}
