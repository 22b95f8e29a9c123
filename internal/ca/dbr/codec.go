package dbr

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

var order = binary.BigEndian

// Encode packs v as the payload for DBR type t. The returned bytes are
// exactly as long as the value requires; callers that frame the result
// onto the wire (internal/ca/wire) are responsible for the 8-byte
// alignment padding described in the wire format.
func Encode(t Type, v Value) ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("dbr: invalid type code %d", uint16(t))
	}
	var buf bytes.Buffer

	switch t.Family() {
	case FamilySTS, FamilyTime, FamilyGR, FamilyCTRL:
		if err := binary.Write(&buf, order, v.Status); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, order, v.Severity); err != nil {
			return nil, err
		}
	}
	if t.Family() == FamilyTime {
		if err := binary.Write(&buf, order, v.Time.Seconds); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, order, v.Time.Nanoseconds); err != nil {
			return nil, err
		}
	}
	if t.Family() == FamilyGR || t.Family() == FamilyCTRL {
		if err := encodeLimits(&buf, t, v.Limits); err != nil {
			return nil, err
		}
	}

	if err := encodeData(&buf, t.Base(), v.Data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode unpacks count elements of DBR type t from data. It returns an
// error if data is shorter than the type's declared layout requires; it
// never consumes trailing bytes beyond what the type+count calls for, so
// callers may hand it an over-long buffer (e.g. one still including
// 8-byte alignment padding).
func Decode(t Type, count uint32, data []byte) (Value, error) {
	if !t.Valid() {
		return Value{}, fmt.Errorf("dbr: invalid type code %d", uint16(t))
	}
	r := bytes.NewReader(data)
	var v Value

	switch t.Family() {
	case FamilySTS, FamilyTime, FamilyGR, FamilyCTRL:
		if err := binary.Read(r, order, &v.Status); err != nil {
			return Value{}, fmt.Errorf("dbr: reading status: %w", err)
		}
		if err := binary.Read(r, order, &v.Severity); err != nil {
			return Value{}, fmt.Errorf("dbr: reading severity: %w", err)
		}
	}
	if t.Family() == FamilyTime {
		if err := binary.Read(r, order, &v.Time.Seconds); err != nil {
			return Value{}, fmt.Errorf("dbr: reading timestamp seconds: %w", err)
		}
		if err := binary.Read(r, order, &v.Time.Nanoseconds); err != nil {
			return Value{}, fmt.Errorf("dbr: reading timestamp nanoseconds: %w", err)
		}
	}
	if t.Family() == FamilyGR || t.Family() == FamilyCTRL {
		limits, err := decodeLimits(r, t)
		if err != nil {
			return Value{}, err
		}
		v.Limits = limits
	}

	elems, err := decodeData(r, t.Base(), int(count))
	if err != nil {
		return Value{}, err
	}
	v.Data = elems
	return v, nil
}

func encodeData(buf *bytes.Buffer, base Type, data any) error {
	switch base {
	case String:
		vals, ok := data.([]string)
		if !ok {
			return fmt.Errorf("dbr: expected []string for %s, got %T", base, data)
		}
		for _, s := range vals {
			writeFixedString(buf, s, 40)
		}
		return nil
	case Int:
		vals, ok := data.([]int16)
		if !ok {
			return fmt.Errorf("dbr: expected []int16 for %s, got %T", base, data)
		}
		return binary.Write(buf, order, vals)
	case Float:
		vals, ok := data.([]float32)
		if !ok {
			return fmt.Errorf("dbr: expected []float32 for %s, got %T", base, data)
		}
		return binary.Write(buf, order, vals)
	case Enum:
		vals, ok := data.([]uint16)
		if !ok {
			return fmt.Errorf("dbr: expected []uint16 for %s, got %T", base, data)
		}
		return binary.Write(buf, order, vals)
	case Char:
		vals, ok := data.([]byte)
		if !ok {
			return fmt.Errorf("dbr: expected []byte for %s, got %T", base, data)
		}
		_, err := buf.Write(vals)
		return err
	case Long:
		vals, ok := data.([]int32)
		if !ok {
			return fmt.Errorf("dbr: expected []int32 for %s, got %T", base, data)
		}
		return binary.Write(buf, order, vals)
	case Double:
		vals, ok := data.([]float64)
		if !ok {
			return fmt.Errorf("dbr: expected []float64 for %s, got %T", base, data)
		}
		return binary.Write(buf, order, vals)
	default:
		return fmt.Errorf("dbr: unhandled base type %s", base)
	}
}

func decodeData(r *bytes.Reader, base Type, count int) (any, error) {
	switch base {
	case String:
		out := make([]string, count)
		for i := range out {
			s, err := readFixedString(r, 40)
			if err != nil {
				return nil, fmt.Errorf("dbr: reading string element %d: %w", i, err)
			}
			out[i] = s
		}
		return out, nil
	case Int:
		out := make([]int16, count)
		if err := binary.Read(r, order, out); err != nil {
			return nil, fmt.Errorf("dbr: reading int16 array: %w", err)
		}
		return out, nil
	case Float:
		out := make([]float32, count)
		if err := binary.Read(r, order, out); err != nil {
			return nil, fmt.Errorf("dbr: reading float32 array: %w", err)
		}
		return out, nil
	case Enum:
		out := make([]uint16, count)
		if err := binary.Read(r, order, out); err != nil {
			return nil, fmt.Errorf("dbr: reading enum array: %w", err)
		}
		return out, nil
	case Char:
		out := make([]byte, count)
		if _, err := readFull(r, out); err != nil {
			return nil, fmt.Errorf("dbr: reading char array: %w", err)
		}
		return out, nil
	case Long:
		out := make([]int32, count)
		if err := binary.Read(r, order, out); err != nil {
			return nil, fmt.Errorf("dbr: reading int32 array: %w", err)
		}
		return out, nil
	case Double:
		out := make([]float64, count)
		if err := binary.Read(r, order, out); err != nil {
			return nil, fmt.Errorf("dbr: reading float64 array: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("dbr: unhandled base type %s", base)
	}
}

func encodeLimits(buf *bytes.Buffer, t Type, l *Limits) error {
	if l == nil {
		l = &Limits{}
	}
	base := t.Base()
	switch base {
	case String:
		// GR_STRING/CTRL_STRING carry no limits on the real wire either;
		// strings have no numeric range to bound.
		return nil
	case Enum:
		n := len(l.EnumStates)
		if n > maxEnumStates {
			n = maxEnumStates
		}
		if err := binary.Write(buf, order, uint16(n)); err != nil {
			return err
		}
		for i := 0; i < maxEnumStates; i++ {
			var s string
			if i < len(l.EnumStates) {
				s = l.EnumStates[i]
			}
			writeFixedString(buf, s, maxEnumStateChars)
		}
		return nil
	default:
		if base == Float || base == Double {
			if err := binary.Write(buf, order, l.Precision); err != nil {
				return err
			}
		}
		writeFixedString(buf, l.Units, unitsFieldSize)
		fields := []float64{l.UpperDisplay, l.LowerDisplay, l.UpperAlarm, l.UpperWarning, l.LowerWarning, l.LowerAlarm}
		if t.Family() == FamilyCTRL {
			fields = append(fields, l.UpperControl, l.LowerControl)
		}
		for _, f := range fields {
			if err := writeScalar(buf, base, f); err != nil {
				return err
			}
		}
		return nil
	}
}

func decodeLimits(r *bytes.Reader, t Type) (*Limits, error) {
	base := t.Base()
	l := &Limits{}
	switch base {
	case String:
		return l, nil
	case Enum:
		var n uint16
		if err := binary.Read(r, order, &n); err != nil {
			return nil, fmt.Errorf("dbr: reading enum state count: %w", err)
		}
		for i := 0; i < maxEnumStates; i++ {
			s, err := readFixedString(r, maxEnumStateChars)
			if err != nil {
				return nil, fmt.Errorf("dbr: reading enum state %d: %w", i, err)
			}
			if i < int(n) {
				l.EnumStates = append(l.EnumStates, s)
			}
		}
		return l, nil
	default:
		if base == Float || base == Double {
			if err := binary.Read(r, order, &l.Precision); err != nil {
				return nil, fmt.Errorf("dbr: reading precision: %w", err)
			}
		}
		units, err := readFixedString(r, unitsFieldSize)
		if err != nil {
			return nil, fmt.Errorf("dbr: reading units: %w", err)
		}
		l.Units = units

		n := 6
		if t.Family() == FamilyCTRL {
			n = 8
		}
		vals := make([]float64, n)
		for i := range vals {
			f, err := readScalar(r, base)
			if err != nil {
				return nil, fmt.Errorf("dbr: reading limit field %d: %w", i, err)
			}
			vals[i] = f
		}
		l.UpperDisplay, l.LowerDisplay = vals[0], vals[1]
		l.UpperAlarm, l.UpperWarning, l.LowerWarning, l.LowerAlarm = vals[2], vals[3], vals[4], vals[5]
		if n == 8 {
			l.UpperControl, l.LowerControl = vals[6], vals[7]
		}
		return l, nil
	}
}

func writeScalar(buf *bytes.Buffer, base Type, v float64) error {
	switch base {
	case Int, Enum:
		return binary.Write(buf, order, int16(v))
	case Long:
		return binary.Write(buf, order, int32(v))
	case Float:
		return binary.Write(buf, order, float32(v))
	case Double:
		return binary.Write(buf, order, v)
	case Char:
		return buf.WriteByte(byte(int8(v)))
	default:
		return fmt.Errorf("dbr: no scalar encoding for base %s", base)
	}
}

func readScalar(r *bytes.Reader, base Type) (float64, error) {
	switch base {
	case Int, Enum:
		var x int16
		err := binary.Read(r, order, &x)
		return float64(x), err
	case Long:
		var x int32
		err := binary.Read(r, order, &x)
		return float64(x), err
	case Float:
		var x float32
		err := binary.Read(r, order, &x)
		return float64(x), err
	case Double:
		var x float64
		err := binary.Read(r, order, &x)
		return x, err
	case Char:
		b, err := r.ReadByte()
		return float64(int8(b)), err
	default:
		return 0, fmt.Errorf("dbr: no scalar decoding for base %s", base)
	}
}

func writeFixedString(buf *bytes.Buffer, s string, size int) {
	b := make([]byte, size)
	n := copy(b, s)
	_ = n
	buf.Write(b)
}

func readFixedString(r *bytes.Reader, size int) (string, error) {
	b := make([]byte, size)
	if _, err := readFull(r, b); err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n := 0
	for n < len(b) {
		m, err := r.Read(b[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, fmt.Errorf("dbr: short read")
		}
	}
	return n, nil
}
