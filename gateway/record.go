package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindAbsent valueKind = iota
	kindNull
	kindNumber
	kindText
	kindBool
	kindComposite
)

// Value is one raw input field as submitted by a caller. The zero Value is
// an absent field; JSON null, numbers, strings and booleans are kept apart
// so each field can apply its own notion of "missing".
type Value struct {
	kind valueKind
	num  float64
	text string
}

func Number(f float64) Value { return Value{kind: kindNumber, num: f} }
func Text(s string) Value    { return Value{kind: kindText, text: s} }
func Null() Value            { return Value{kind: kindNull} }

func Bool(b bool) Value {
	v := Value{kind: kindBool}
	if b {
		v.num = 1
	}
	return v
}

func (v Value) Absent() bool { return v.kind == kindAbsent }

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}
	switch data[0] {
	case 'n':
		*v = Null()
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '{', '[':
		*v = Value{kind: kindComposite, text: string(data)}
	default:
		f, err := parseFloat(string(data))
		if err != nil {
			return fmt.Errorf("invalid number %s: %w", data, err)
		}
		*v = Number(f)
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return json.Marshal(strconv.FormatFloat(v.num, 'g', -1, 64))
		}
		return json.Marshal(v.num)
	case kindText:
		return json.Marshal(v.text)
	case kindBool:
		return json.Marshal(v.num == 1)
	case kindComposite:
		return []byte(v.text), nil
	default:
		return []byte("null"), nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case kindAbsent:
		return "<absent>"
	case kindNull:
		return "None"
	case kindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case kindBool:
		if v.num == 1 {
			return "True"
		}
		return "False"
	default:
		return v.text
	}
}

// Record is one patient as submitted through the call interface. Every
// field is optional; defaults are applied by Resolve.
type Record struct {
	Gender         Value `json:"gender"`
	Age            Value `json:"age"`
	Hypertension   Value `json:"hypertension"`
	HeartDisease   Value `json:"heart_disease"`
	SmokingHistory Value `json:"smoking_history"`
	BMI            Value `json:"bmi"`
	HbA1c          Value `json:"HbA1c_level"`
	Glucose        Value `json:"blood_glucose_level"`
}

// Field names of the call interface, in feature order.
const (
	FieldGender         = "gender"
	FieldAge            = "age"
	FieldHypertension   = "hypertension"
	FieldHeartDisease   = "heart_disease"
	FieldSmokingHistory = "smoking_history"
	FieldBMI            = "bmi"
	FieldHbA1c          = "HbA1c_level"
	FieldGlucose        = "blood_glucose_level"
)

func FieldNames() []string {
	return []string{
		FieldGender, FieldAge, FieldHypertension, FieldHeartDisease,
		FieldSmokingHistory, FieldBMI, FieldHbA1c, FieldGlucose,
	}
}

// Set assigns a field by its call-interface name.
func (r *Record) Set(field string, v Value) error {
	switch field {
	case FieldGender:
		r.Gender = v
	case FieldAge:
		r.Age = v
	case FieldHypertension:
		r.Hypertension = v
	case FieldHeartDisease:
		r.HeartDisease = v
	case FieldSmokingHistory:
		r.SmokingHistory = v
	case FieldBMI:
		r.BMI = v
	case FieldHbA1c:
		r.HbA1c = v
	case FieldGlucose:
		r.Glucose = v
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// ErrNotObject is returned by DecodeRecord for any JSON value other than an
// object. A null body must not turn into an all-defaults patient.
var ErrNotObject = errors.New("record must be a JSON object")

// DecodeRecord parses one record from a JSON object.
func DecodeRecord(data []byte) (Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, ErrNotObject
	}
	var record Record
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// MarshalJSON omits absent fields so a record round-trips unchanged.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := []Value{r.Gender, r.Age, r.Hypertension, r.HeartDisease, r.SmokingHistory, r.BMI, r.HbA1c, r.Glucose}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for i, name := range FieldNames() {
		if fields[i].Absent() {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(name)
		val, err := fields[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// toFloat coerces a numeric field. Only absence selects the default: null,
// composites and unparseable text are errors.
func toFloat(field string, v Value, def float64) (float64, error) {
	switch v.kind {
	case kindAbsent:
		return def, nil
	case kindNumber, kindBool:
		return v.num, nil
	case kindText:
		f, err := parseFloat(strings.TrimSpace(v.text))
		if err != nil {
			return 0, fmt.Errorf("%s: could not convert string to float: '%s'", field, v.text)
		}
		return f, nil
	case kindNull:
		return 0, fmt.Errorf("%s: float() argument must be a string or a real number, not 'NoneType'", field)
	default:
		return 0, fmt.Errorf("%s: float() argument must be a string or a real number, not '%s'", field, v.text)
	}
}

// toInt coerces a binary indicator, truncating numbers toward zero.
func toInt(field string, v Value, def int) (int, error) {
	switch v.kind {
	case kindAbsent:
		return def, nil
	case kindNumber, kindBool:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, fmt.Errorf("%s: cannot convert float %s to integer", field, v)
		}
		return int(v.num), nil
	case kindText:
		n, err := strconv.Atoi(strings.TrimSpace(v.text))
		if err != nil {
			return 0, fmt.Errorf("%s: invalid literal for int() with base 10: '%s'", field, v.text)
		}
		return n, nil
	case kindNull:
		return 0, fmt.Errorf("%s: int() argument must be a string or a real number, not 'NoneType'", field)
	default:
		return 0, fmt.Errorf("%s: int() argument must be a string or a real number, not '%s'", field, v.text)
	}
}

// toLabel stringifies a categorical field; anything the encoder does not
// know is replaced later, so no input is an error here.
func toLabel(v Value, def string) string {
	if v.kind == kindAbsent {
		return def
	}
	return v.String()
}

// resolveBMI treats absent, null, blank, NaN and unparseable values as
// missing and substitutes the training median.
func resolveBMI(v Value, median float64) (float64, bool) {
	switch v.kind {
	case kindNumber, kindBool:
		if math.IsNaN(v.num) {
			return median, true
		}
		return v.num, false
	case kindText:
		s := strings.TrimSpace(v.text)
		if s == "" {
			return median, true
		}
		f, err := parseFloat(s)
		if err != nil || math.IsNaN(f) {
			return median, true
		}
		return f, false
	default:
		return median, true
	}
}

// parseFloat accepts out-of-range literals the way float() does: overflow
// becomes ±Inf and underflow ±0, so range validation sees them.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && errors.Is(err, strconv.ErrRange) {
		return f, nil
	}
	return f, err
}
