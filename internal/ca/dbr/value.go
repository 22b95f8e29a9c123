package dbr

// Limits is the graphic/control decoration carried by the GR and CTRL
// families. Display and alarm limits apply to GR and CTRL alike; the
// control limits only exist on CTRL. String-based types carry no limits at
// all (there is nothing to bound); Enum-based types carry a state-string
// table instead of numeric limits.
//
// Numeric limit fields are kept as float64 regardless of the underlying
// base type's wire width (int16, int32, float32, float64, or the 1-byte
// char) for a single uniform Go-side representation; Encode narrows them
// back down to the wire width of the base type, same as real EPICS clients
// do when they read dbr_ctrl_* structs into wider host types.
type Limits struct {
	Precision int16 // FLOAT/DOUBLE only

	Units string // ignored for String/Enum bases

	UpperDisplay float64
	LowerDisplay float64
	UpperAlarm   float64
	UpperWarning float64
	LowerWarning float64
	LowerAlarm   float64

	UpperControl float64 // CTRL family only
	LowerControl float64 // CTRL family only

	EnumStates []string // Enum GR/CTRL only, at most maxEnumStates entries
}

const (
	maxEnumStates     = 16
	maxEnumStateChars = 26
	unitsFieldSize    = 8
)

// Value is a fully decoded DBR payload: the optional status/severity,
// timestamp, and limit prefixes plus the value array itself. Which fields
// are meaningful is determined entirely by the Type passed alongside a
// Value to Encode/Decode; Value carries no type tag of its own so that a
// single struct serves every family.
type Value struct {
	Status   uint16
	Severity uint16
	Time     Timestamp
	Limits   *Limits

	// Data holds the value array using the Go type natural to the base
	// DBR type: []string (String), []int16 (Int), []float32 (Float),
	// []uint16 (Enum), []byte (Char), []int32 (Long), or []float64
	// (Double). Callers that know the type statically should use the
	// typed accessors below rather than asserting directly.
	Data any
}

// Strings returns Data as []string and whether the assertion succeeded.
func (v Value) Strings() ([]string, bool) { s, ok := v.Data.([]string); return s, ok }

// Int16s returns Data as []int16 and whether the assertion succeeded.
func (v Value) Int16s() ([]int16, bool) { s, ok := v.Data.([]int16); return s, ok }

// Float32s returns Data as []float32 and whether the assertion succeeded.
func (v Value) Float32s() ([]float32, bool) { s, ok := v.Data.([]float32); return s, ok }

// Uint16s returns Data as []uint16 (Enum indices) and whether the
// assertion succeeded.
func (v Value) Uint16s() ([]uint16, bool) { s, ok := v.Data.([]uint16); return s, ok }

// Bytes returns Data as []byte (Char) and whether the assertion succeeded.
func (v Value) Bytes() ([]byte, bool) { s, ok := v.Data.([]byte); return s, ok }

// Int32s returns Data as []int32 (Long) and whether the assertion succeeded.
func (v Value) Int32s() ([]int32, bool) { s, ok := v.Data.([]int32); return s, ok }

// Float64s returns Data as []float64 (Double) and whether the assertion
// succeeded.
func (v Value) Float64s() ([]float64, bool) { s, ok := v.Data.([]float64); return s, ok }

// Count returns the number of elements Data holds, i.e. the data_count a
// header carrying this value would declare.
func (v Value) Count() int {
	switch d := v.Data.(type) {
	case []string:
		return len(d)
	case []int16:
		return len(d)
	case []float32:
		return len(d)
	case []uint16:
		return len(d)
	case []byte:
		return len(d)
	case []int32:
		return len(d)
	case []float64:
		return len(d)
	default:
		return 0
	}
}
