package pgcast

// PostgreSQL oids for the types handled by this package.
const (
	BoolOID             = 16
	Int8OID             = 20
	Int2OID             = 21
	Int4OID             = 23
	TextOID             = 25
	JSONOID             = 114
	PointOID            = 600
	CIDROID             = 650
	Float4OID           = 700
	Float8OID           = 701
	InetOID             = 869
	VarcharOID          = 1043
	DateOID             = 1082
	TimestampOID        = 1114
	TimestamptzOID      = 1184
	BitOID              = 1560
	VarbitOID           = 1562
	NumericOID          = 1700
	JSONBOID            = 3802
	Int4rangeOID        = 3904
	NumrangeOID         = 3906
	TsrangeOID          = 3908
	TstzrangeOID        = 3910
	DaterangeOID        = 3912
	Int8rangeOID        = 3926
	BoolArrayOID        = 1000
	Int2ArrayOID        = 1005
	Int4ArrayOID        = 1007
	TextArrayOID        = 1009
	VarcharArrayOID     = 1015
	Int8ArrayOID        = 1016
	PointArrayOID       = 1017
	Float4ArrayOID      = 1021
	Float8ArrayOID      = 1022
	InetArrayOID        = 1041
	TimestampArrayOID   = 1115
	DateArrayOID        = 1182
	TimestamptzArrayOID = 1185
	NumericArrayOID     = 1231
	CIDRArrayOID        = 651
	JSONArrayOID        = 199
	JSONBArrayOID       = 3807
	VarbitArrayOID      = 1563
	UUIDOID             = 2950
	UUIDArrayOID        = 2951
)

type InfinityModifier int8

const (
	Infinity         InfinityModifier = 1
	None             InfinityModifier = 0
	NegativeInfinity InfinityModifier = -Infinity
)

func (im InfinityModifier) String() string {
	switch im {
	case None:
		return "none"
	case Infinity:
		return "infinity"
	case NegativeInfinity:
		return "-infinity"
	default:
		return "invalid"
	}
}

// BoundType describes one end of a range.
type BoundType byte

const (
	Inclusive = BoundType('i')
	Exclusive = BoundType('e')
	Unbounded = BoundType('U')
	Empty     = BoundType('E')
)

func (bt BoundType) String() string {
	return string(bt)
}
