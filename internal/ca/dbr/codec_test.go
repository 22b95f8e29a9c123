package dbr_test

import (
	"reflect"
	"testing"

	"github.com/caproto-go/caproto/internal/ca/dbr"
)

func TestEncodeDecodeRoundTripScalar(t *testing.T) {
	cases := []struct {
		name string
		typ  dbr.Type
		data any
	}{
		{"int", dbr.Int, []int16{42}},
		{"float", dbr.Float, []float32{1.5}},
		{"enum", dbr.Enum, []uint16{2}},
		{"double", dbr.Double, []float64{3.14159}},
		{"long", dbr.Long, []int32{-7}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc, err := dbr.Encode(c.typ, dbr.Value{Data: c.data})
			if err != nil {
				t.Fatal(err)
			}
			got, err := dbr.Decode(c.typ, uint32(reflect.ValueOf(c.data).Len()), enc)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Data, c.data) {
				t.Fatalf("round trip: got %+v, want %+v", got.Data, c.data)
			}
		})
	}
}

func TestEncodeDecodeRoundTripString(t *testing.T) {
	val := dbr.Value{Data: []string{"hello"}}
	enc, err := dbr.Encode(dbr.String, val)
	if err != nil {
		t.Fatal(err)
	}
	got, err := dbr.Decode(dbr.String, 1, enc)
	if err != nil {
		t.Fatal(err)
	}
	strs, ok := got.Strings()
	if !ok {
		t.Fatalf("Strings() assertion failed on %T", got.Data)
	}
	if want := []string{"hello"}; !reflect.DeepEqual(strs, want) {
		t.Fatalf("unexpected string round trip: got %v, want %v", strs, want)
	}
}

func TestEncodeDecodeRoundTripArray(t *testing.T) {
	val := dbr.Value{Data: []int16{1, 2, 3, 4, 5}}
	enc, err := dbr.Encode(dbr.Int, val)
	if err != nil {
		t.Fatal(err)
	}
	got, err := dbr.Decode(dbr.Int, 5, enc)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Data, val.Data) {
		t.Fatalf("array round trip: got %+v, want %+v", got.Data, val.Data)
	}
	if got, want := got.Count(), 5; got != want {
		t.Fatalf("unexpected count: got %d, want %d", got, want)
	}
}

func TestEncodeDecodeRoundTripTime(t *testing.T) {
	val := dbr.Value{
		Status:   3,
		Severity: 1,
		Time:     dbr.Timestamp{Seconds: 100, Nanoseconds: 200},
		Data:     []float64{2.5},
	}
	enc, err := dbr.Encode(dbr.TimeDouble, val)
	if err != nil {
		t.Fatal(err)
	}
	got, err := dbr.Decode(dbr.TimeDouble, 1, enc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != val.Status || got.Severity != val.Severity || got.Time != val.Time {
		t.Fatalf("unexpected TIME prefix: got %+v, want %+v", got, val)
	}
	if !reflect.DeepEqual(got.Data, val.Data) {
		t.Fatalf("unexpected TIME data: got %+v, want %+v", got.Data, val.Data)
	}
}

func TestEncodeDecodeRoundTripControl(t *testing.T) {
	val := dbr.Value{
		Status:   0,
		Severity: 0,
		Limits: &dbr.Limits{
			Precision:    2,
			Units:        "volts",
			UpperDisplay: 10,
			LowerDisplay: 0,
			UpperAlarm:   9,
			LowerAlarm:   1,
			UpperWarning: 8,
			LowerWarning: 2,
			UpperControl: 10,
			LowerControl: 0,
		},
		Data: []float64{5},
	}
	enc, err := dbr.Encode(dbr.CTRLDouble, val)
	if err != nil {
		t.Fatal(err)
	}
	got, err := dbr.Decode(dbr.CTRLDouble, 1, enc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Limits.Units != val.Limits.Units {
		t.Fatalf("unexpected units: got %q, want %q", got.Limits.Units, val.Limits.Units)
	}
	if got.Limits.UpperAlarm != val.Limits.UpperAlarm {
		t.Fatalf("unexpected upper alarm limit: got %v, want %v", got.Limits.UpperAlarm, val.Limits.UpperAlarm)
	}
	if got.Limits.UpperControl != val.Limits.UpperControl {
		t.Fatalf("unexpected upper control limit: got %v, want %v", got.Limits.UpperControl, val.Limits.UpperControl)
	}
}

func TestEncodeDecodeRoundTripEnumLimits(t *testing.T) {
	val := dbr.Value{
		Limits: &dbr.Limits{EnumStates: []string{"OFF", "ON"}},
		Data:   []uint16{1},
	}
	enc, err := dbr.Encode(dbr.CTRLEnum, val)
	if err != nil {
		t.Fatal(err)
	}
	got, err := dbr.Decode(dbr.CTRLEnum, 1, enc)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"OFF", "ON"}; !reflect.DeepEqual(got.Limits.EnumStates, want) {
		t.Fatalf("unexpected enum states: got %v, want %v", got.Limits.EnumStates, want)
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	if _, err := dbr.Decode(dbr.Type(999), 1, []byte{0, 0}); err == nil {
		t.Fatal("expected an error decoding an unknown DBR type")
	}
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	if _, err := dbr.Encode(dbr.Type(999), dbr.Value{}); err == nil {
		t.Fatal("expected an error encoding an unknown DBR type")
	}
}

func TestTypeBaseAndFamily(t *testing.T) {
	if got, want := dbr.CTRLDouble.Base(), dbr.Double; got != want {
		t.Fatalf("unexpected base type: got %v, want %v", got, want)
	}
	if got, want := dbr.CTRLDouble.Family(), dbr.FamilyCTRL; got != want {
		t.Fatalf("unexpected family: got %v, want %v", got, want)
	}
	if got, want := dbr.String.Family(), dbr.FamilyBasic; got != want {
		t.Fatalf("unexpected family: got %v, want %v", got, want)
	}
	if got, want := dbr.CTRLDouble.ElementSize(), 8; got != want {
		t.Fatalf("unexpected element size: got %d, want %d", got, want)
	}
}

func TestTypeValid(t *testing.T) {
	if !dbr.Double.Valid() {
		t.Fatal("Double should be valid")
	}
	if dbr.Type(35).Valid() {
		t.Fatal("type code 35 should not be valid")
	}
}
