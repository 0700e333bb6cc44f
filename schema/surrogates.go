package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Digit capacities large enough for every finite value printed in its
// shortest exact decimal form.
const (
	Float32IntegerDigits  = 39
	Float32FractionDigits = 46
	Float64IntegerDigits  = 309
	Float64FractionDigits = 325
)

// FloatKind tags the class of a floating point value in its proxy.
var FloatKind = NewEnum("FloatKind", "Finite", "NaN", "PositiveInfinity", "NegativeInfinity")

func digitsProxy(name string, withKind bool, integerDigits, fractionDigits int) *Struct {
	var fields []Field
	if withKind {
		fields = append(fields, Field{Name: "kind", Schema: FloatKind})
	}
	fields = append(fields,
		Field{Name: "negative", Schema: Bool()},
		Field{Name: "integer", Schema: NewFixedList(integerDigits, Uint(8))},
		Field{Name: "fraction", Schema: NewFixedList(fractionDigits, Uint(8))},
	)
	return NewStruct(name+"Repr", fields...)
}

// NewFloat returns the surrogate for a float32 (bits 32) or float64 (bits
// 64) value. The value is decomposed into its kind, sign and the decimal
// digits of its integer and fraction parts.
func NewFloat(bits, integerDigits, fractionDigits int) *Surrogate {
	name := fmt.Sprintf("Float%d", bits)
	defInt, defFrac := Float32IntegerDigits, Float32FractionDigits
	if bits == 64 {
		defInt, defFrac = Float64IntegerDigits, Float64FractionDigits
	}
	if integerDigits != defInt || fractionDigits != defFrac {
		name = fmt.Sprintf("Float%dI%dF%d", bits, integerDigits, fractionDigits)
	}
	return NewSurrogate(name, digitsProxy(name, true, integerDigits, fractionDigits), floatConverter{bits: bits})
}

// NewDecimal returns the surrogate for a decimal.Decimal. Host values may
// also be given as strings such as "-12.5"; decoded values are always
// decimal.Decimal.
func NewDecimal(integerDigits, fractionDigits int) *Surrogate {
	name := fmt.Sprintf("DecimalI%dF%d", integerDigits, fractionDigits)
	conv := decimalConverter{integerDigits: integerDigits, fractionDigits: fractionDigits}
	return NewSurrogate(name, digitsProxy(name, false, integerDigits, fractionDigits), conv)
}

// NewChar returns the surrogate for a single Unicode code point (rune).
func NewChar() *Surrogate {
	return NewSurrogate("Char", Uint(32), charConverter{})
}

type floatConverter struct {
	bits int
}

func (c floatConverter) ToProxy(v any) (any, error) {
	if n, ok := v.(json.Number); ok {
		x, err := strconv.ParseFloat(string(n), c.bits)
		if err != nil {
			return nil, err
		}
		v = x
		if c.bits == 32 {
			v = float32(x)
		}
	}
	var f float64
	switch x := v.(type) {
	case float32:
		f = float64(x)
	case float64:
		if c.bits == 32 && !math.IsNaN(x) && float64(float32(x)) != x {
			return nil, fmt.Errorf("%v is not representable as float32", x)
		}
		f = x
	default:
		return nil, fmt.Errorf("expected float, got %T", v)
	}
	kind := "Finite"
	switch {
	case math.IsNaN(f):
		return map[string]any{"kind": "NaN", "negative": false, "integer": []any{}, "fraction": []any{}}, nil
	case math.IsInf(f, 1):
		kind = "PositiveInfinity"
	case math.IsInf(f, -1):
		kind = "NegativeInfinity"
	}
	if kind != "Finite" {
		return map[string]any{"kind": kind, "negative": f < 0, "integer": []any{}, "fraction": []any{}}, nil
	}
	intPart, fracPart := splitDecimal(strconv.FormatFloat(math.Abs(f), 'f', -1, c.bits))
	return map[string]any{
		"kind":     kind,
		"negative": math.Signbit(f),
		"integer":  digitList(intPart),
		"fraction": digitList(fracPart),
	}, nil
}

func (c floatConverter) FromProxy(p any) (any, error) {
	m, ok := p.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected float proxy, got %T", p)
	}
	negative, _ := m["negative"].(bool)
	var f float64
	switch m["kind"] {
	case "NaN":
		f = math.NaN()
	case "PositiveInfinity":
		f = math.Inf(1)
	case "NegativeInfinity":
		f = math.Inf(-1)
	case "Finite":
		s, err := digitsString(m, negative)
		if err != nil {
			return nil, err
		}
		if f, err = strconv.ParseFloat(s, c.bits); err != nil {
			return nil, err
		}
		if negative && f == 0 {
			f = math.Copysign(0, -1)
		}
	default:
		return nil, fmt.Errorf("invalid float kind %v", m["kind"])
	}
	if c.bits == 32 {
		return float32(f), nil
	}
	return f, nil
}

// decimalConverter maps decimal.Decimal values, or their string form, onto
// the sign and the canonical digits of their integer and fraction parts.
type decimalConverter struct {
	integerDigits  int
	fractionDigits int
}

func (c decimalConverter) ToProxy(v any) (any, error) {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return nil, fmt.Errorf("expected decimal, got nil")
		}
		d = *x
	case string, json.Number:
		s := fmt.Sprint(x)
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", s, err)
		}
		d = parsed
	default:
		return nil, fmt.Errorf("expected decimal, got %T", v)
	}
	intPart, fracPart := c.digits(d)
	return map[string]any{
		"negative": d.Sign() < 0,
		"integer":  digitList(intPart),
		"fraction": digitList(fracPart),
	}, nil
}

// digits splits the coefficient of d at its exponent. The integer part has
// no leading zeros and the fraction part no trailing zeros. A part longer
// than its capacity is cut one digit past it, which is enough for the codec
// to reject it.
func (c decimalConverter) digits(d decimal.Decimal) (string, string) {
	if d.IsZero() {
		return "", ""
	}
	coef := new(big.Int).Abs(d.Coefficient()).String()
	exp := int64(d.Exponent())
	trimmed := strings.TrimRight(coef, "0")
	exp += int64(len(coef) - len(trimmed))
	coef = trimmed

	if exp >= 0 {
		if int64(len(coef))+exp > int64(c.integerDigits) {
			return overflow(coef, c.integerDigits), ""
		}
		return coef + strings.Repeat("0", int(exp)), ""
	}
	if -exp > int64(c.fractionDigits) {
		return "", overflow(coef, c.fractionDigits)
	}
	n := int(-exp)
	if len(coef) <= n {
		return "", strings.Repeat("0", n-len(coef)) + coef
	}
	return coef[:len(coef)-n], coef[len(coef)-n:]
}

func overflow(coef string, capacity int) string {
	return coef + strings.Repeat("0", capacity+1-min(len(coef), capacity+1))
}

func (c decimalConverter) FromProxy(p any) (any, error) {
	m, ok := p.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected decimal proxy, got %T", p)
	}
	intPart, err := listDigits(m["integer"])
	if err != nil {
		return nil, err
	}
	fracPart, err := listDigits(m["fraction"])
	if err != nil {
		return nil, err
	}
	coef := new(big.Int)
	ten := big.NewInt(10)
	for _, r := range intPart + fracPart {
		coef.Mul(coef, ten).Add(coef, big.NewInt(int64(r-'0')))
	}
	if negative, _ := m["negative"].(bool); negative {
		coef.Neg(coef)
	}
	return decimal.NewFromBigInt(coef, -int32(len(fracPart))), nil
}

type charConverter struct{}

func (charConverter) ToProxy(v any) (any, error) {
	if s, ok := v.(string); ok && utf8.RuneCountInString(s) == 1 {
		v, _ = utf8.DecodeRuneInString(s)
	}
	r, ok := v.(rune)
	if !ok || !utf8.ValidRune(r) {
		return nil, fmt.Errorf("expected valid rune, got %T(%v)", v, v)
	}
	return uint32(r), nil
}

func (charConverter) FromProxy(p any) (any, error) {
	u, ok := p.(uint32)
	if !ok || !utf8.ValidRune(rune(u)) {
		return nil, fmt.Errorf("invalid code point %v", p)
	}
	return rune(u), nil
}

// splitDecimal returns the integer digits without leading zeros and the
// fraction digits without trailing zeros of an unsigned decimal string.
func splitDecimal(s string) (string, string) {
	intPart, fracPart, _ := strings.Cut(s, ".")
	return strings.TrimLeft(intPart, "0"), strings.TrimRight(fracPart, "0")
}

func digitList(s string) []any {
	l := make([]any, len(s))
	for i := range len(s) {
		l[i] = s[i] - '0'
	}
	return l
}

func digitsString(m map[string]any, negative bool) (string, error) {
	intPart, err := listDigits(m["integer"])
	if err != nil {
		return "", err
	}
	fracPart, err := listDigits(m["fraction"])
	if err != nil {
		return "", err
	}
	intPart, fracPart = strings.TrimLeft(intPart, "0"), strings.TrimRight(fracPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	s := intPart
	if fracPart != "" {
		s += "." + fracPart
	}
	if negative && s != "0" {
		s = "-" + s
	}
	return s, nil
}

func listDigits(v any) (string, error) {
	l, ok := v.([]any)
	if !ok {
		return "", fmt.Errorf("expected digit list, got %T", v)
	}
	var sb strings.Builder
	for _, d := range l {
		u, ok := d.(uint8)
		if !ok || u > 9 {
			return "", fmt.Errorf("invalid decimal digit %v", d)
		}
		sb.WriteByte('0' + u)
	}
	return sb.String(), nil
}
