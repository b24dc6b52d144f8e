package variable

import (
	"reflect"
	"strconv"

	"github.com/wudi/stew/typeinfo"
)

// registerBuiltins pre-registers operator vtables and a complete matrix of
// pairwise converters for the built-in arithmetic/string-like types: bool,
// int8..int64, uint8..uint64, float32/64, Byte, string.
func registerBuiltins(r *Registry) {
	registerBool(r)
	registerInt[int8](r)
	registerInt[int16](r)
	registerInt[int32](r)
	registerInt[int64](r)
	registerInt[int](r)
	registerUint[uint8](r)
	registerUint[uint16](r)
	registerUint[uint32](r)
	registerUint[uint64](r)
	registerUint[uint](r)
	registerFloat[float32](r)
	registerFloat[float64](r)
	registerByte(r)
	registerString(r)
	registerVoid(r)

	registerNumericConverters(r)
	registerStringConverters(r)
	registerByteConverters(r)
}

type signedInt interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int
}

type unsignedInt interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

type anyNumeric interface {
	signedInt | unsignedInt | ~float32 | ~float64
}

func toFloat64[T anyNumeric](v T) float64 { return float64(v) }

func registerBool(r *Registry) {
	t := typeinfo.Of[bool]()
	r.RegisterType(t, &Operators{
		Eq:   func(l, rr any) (any, error) { return l.(bool) == rr.(bool), nil },
		Land: func(l, rr any) (any, error) { return l.(bool) && rr.(bool), nil },
		Lor:  func(l, rr any) (any, error) { return l.(bool) || rr.(bool), nil },
		Lnot: func(v any) (any, error) { return !v.(bool), nil },
	})
}

func registerInt[T signedInt](r *Registry) {
	t := typeinfo.Of[T]()
	r.RegisterType(t, &Operators{
		Add:   func(l, rr any) (any, error) { return l.(T) + rr.(T), nil },
		Sub:   func(l, rr any) (any, error) { return l.(T) - rr.(T), nil },
		Mul:   func(l, rr any) (any, error) { return l.(T) * rr.(T), nil },
		Div:   divideInt[T],
		BwAnd: func(l, rr any) (any, error) { return l.(T) & rr.(T), nil },
		BwOr:  func(l, rr any) (any, error) { return l.(T) | rr.(T), nil },
		BwXor: func(l, rr any) (any, error) { return l.(T) ^ rr.(T), nil },
		BwNot: func(v any) (any, error) { return ^v.(T), nil },
		BwShl: func(l any, n uint64) (any, error) { return l.(T) << n, nil },
		BwShr: func(l any, n uint64) (any, error) { return l.(T) >> n, nil },
		Eq:    func(l, rr any) (any, error) { return l.(T) == rr.(T), nil },
		Less:  func(l, rr any) (any, error) { return l.(T) < rr.(T), nil },
		Leq:   func(l, rr any) (any, error) { return l.(T) <= rr.(T), nil },
		Gt:    func(l, rr any) (any, error) { return l.(T) > rr.(T), nil },
		Geq:   func(l, rr any) (any, error) { return l.(T) >= rr.(T), nil },
	})
}

func divideInt[T signedInt](l, rr any) (any, error) {
	divisor := rr.(T)
	if divisor == 0 {
		return nil, undefinedOperator("div")
	}
	return l.(T) / divisor, nil
}

func registerUint[T unsignedInt](r *Registry) {
	t := typeinfo.Of[T]()
	r.RegisterType(t, &Operators{
		Add:   func(l, rr any) (any, error) { return l.(T) + rr.(T), nil },
		Sub:   func(l, rr any) (any, error) { return l.(T) - rr.(T), nil },
		Mul:   func(l, rr any) (any, error) { return l.(T) * rr.(T), nil },
		Div:   divideUint[T],
		BwAnd: func(l, rr any) (any, error) { return l.(T) & rr.(T), nil },
		BwOr:  func(l, rr any) (any, error) { return l.(T) | rr.(T), nil },
		BwXor: func(l, rr any) (any, error) { return l.(T) ^ rr.(T), nil },
		BwNot: func(v any) (any, error) { return ^v.(T), nil },
		BwShl: func(l any, n uint64) (any, error) { return l.(T) << n, nil },
		BwShr: func(l any, n uint64) (any, error) { return l.(T) >> n, nil },
		Eq:    func(l, rr any) (any, error) { return l.(T) == rr.(T), nil },
		Less:  func(l, rr any) (any, error) { return l.(T) < rr.(T), nil },
		Leq:   func(l, rr any) (any, error) { return l.(T) <= rr.(T), nil },
		Gt:    func(l, rr any) (any, error) { return l.(T) > rr.(T), nil },
		Geq:   func(l, rr any) (any, error) { return l.(T) >= rr.(T), nil },
	})
}

func divideUint[T unsignedInt](l, rr any) (any, error) {
	divisor := rr.(T)
	if divisor == 0 {
		return nil, undefinedOperator("div")
	}
	return l.(T) / divisor, nil
}

func registerFloat[T ~float32 | ~float64](r *Registry) {
	t := typeinfo.Of[T]()
	r.RegisterType(t, &Operators{
		Add:  func(l, rr any) (any, error) { return l.(T) + rr.(T), nil },
		Sub:  func(l, rr any) (any, error) { return l.(T) - rr.(T), nil },
		Mul:  func(l, rr any) (any, error) { return l.(T) * rr.(T), nil },
		Div:  func(l, rr any) (any, error) { return l.(T) / rr.(T), nil },
		Eq:   func(l, rr any) (any, error) { return l.(T) == rr.(T), nil },
		Less: func(l, rr any) (any, error) { return l.(T) < rr.(T), nil },
		Leq:  func(l, rr any) (any, error) { return l.(T) <= rr.(T), nil },
		Gt:   func(l, rr any) (any, error) { return l.(T) > rr.(T), nil },
		Geq:  func(l, rr any) (any, error) { return l.(T) >= rr.(T), nil },
	})
}

func registerByte(r *Registry) {
	t := typeinfo.Of[Byte]()
	r.RegisterType(t, &Operators{
		Add:   func(l, rr any) (any, error) { return l.(Byte) + rr.(Byte), nil },
		Sub:   func(l, rr any) (any, error) { return l.(Byte) - rr.(Byte), nil },
		BwAnd: func(l, rr any) (any, error) { return l.(Byte) & rr.(Byte), nil },
		BwOr:  func(l, rr any) (any, error) { return l.(Byte) | rr.(Byte), nil },
		BwXor: func(l, rr any) (any, error) { return l.(Byte) ^ rr.(Byte), nil },
		BwNot: func(v any) (any, error) { return ^v.(Byte), nil },
		Eq:    func(l, rr any) (any, error) { return l.(Byte) == rr.(Byte), nil },
		Less:  func(l, rr any) (any, error) { return l.(Byte) < rr.(Byte), nil },
		Leq:   func(l, rr any) (any, error) { return l.(Byte) <= rr.(Byte), nil },
		Gt:    func(l, rr any) (any, error) { return l.(Byte) > rr.(Byte), nil },
		Geq:   func(l, rr any) (any, error) { return l.(Byte) >= rr.(Byte), nil },
	})
}

// registerVoid registers a trivial vtable for Void, the marker type a
// void-returning invocation's result is wrapped in (see EmptyResult):
// every Void compares equal to every other Void, and nothing else applies.
func registerVoid(r *Registry) {
	t := typeinfo.Of[Void]()
	r.RegisterType(t, &Operators{
		Eq: func(l, rr any) (any, error) { return true, nil },
	})
}

func registerString(r *Registry) {
	t := typeinfo.Of[string]()
	r.RegisterType(t, &Operators{
		Add:  func(l, rr any) (any, error) { return l.(string) + rr.(string), nil },
		Eq:   func(l, rr any) (any, error) { return l.(string) == rr.(string), nil },
		Less: func(l, rr any) (any, error) { return l.(string) < rr.(string), nil },
		Leq:  func(l, rr any) (any, error) { return l.(string) <= rr.(string), nil },
		Gt:   func(l, rr any) (any, error) { return l.(string) > rr.(string), nil },
		Geq:  func(l, rr any) (any, error) { return l.(string) >= rr.(string), nil },
	})
}

// numericType describes one registered numeric type for matrix-building:
// its reflect.Type (for native T(value) conversion) and its string codec.
type numericType struct {
	info  typeinfo.TypeInfo
	rtype reflect.Type
	fromS func(string) (any, error)
	toS   func(any) string
}

// convert applies Go's native conversion semantics for v (of some other
// registered numeric type) into nt's concrete type, the same truncation,
// rounding, and two's-complement wraparound behavior a direct T(value)
// conversion in source would produce.
func (nt numericType) convert(v any) any {
	return reflect.ValueOf(v).Convert(nt.rtype).Interface()
}

func numericTypes() []numericType {
	return []numericType{
		numEntry[int8](),
		numEntry[int16](),
		numEntry[int32](),
		numEntry[int64](),
		numEntry[int](),
		numEntryU[uint8](),
		numEntryU[uint16](),
		numEntryU[uint32](),
		numEntryU[uint64](),
		numEntryU[uint](),
		numEntryF[float32](),
		numEntryF[float64](),
	}
}

func numEntry[T signedInt]() numericType {
	return numericType{
		info:  typeinfo.Of[T](),
		rtype: reflect.TypeOf(T(0)),
		fromS: func(s string) (any, error) {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, err
			}
			return T(n), nil
		},
		toS: func(v any) string { return strconv.FormatInt(int64(v.(T)), 10) },
	}
}

func numEntryU[T unsignedInt]() numericType {
	return numericType{
		info:  typeinfo.Of[T](),
		rtype: reflect.TypeOf(T(0)),
		fromS: func(s string) (any, error) {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, err
			}
			return T(n), nil
		},
		toS: func(v any) string { return strconv.FormatUint(uint64(v.(T)), 10) },
	}
}

func numEntryF[T ~float32 | ~float64]() numericType {
	return numericType{
		info:  typeinfo.Of[T](),
		rtype: reflect.TypeOf(T(0)),
		fromS: func(s string) (any, error) {
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, err
			}
			return T(n), nil
		},
		toS: func(v any) string { return strconv.FormatFloat(float64(v.(T)), 'g', -1, 64) },
	}
}

// registerNumericConverters wires the any-numeric <-> any-numeric explicit
// converter matrix via a direct reflect.Value.Convert between the two
// concrete types, the same narrowing/widening and two's-complement
// wraparound a native T(value) conversion would give: never pivoted
// through float64, so int64/uint64 magnitudes beyond the float mantissa
// round-trip exactly.
func registerNumericConverters(r *Registry) {
	types := numericTypes()
	for _, from := range types {
		for _, to := range types {
			if from.info.Equal(to.info) {
				continue
			}
			to := to
			r.RegisterConverter(from.info, Converter{
				Target: to.info,
				Convert: func(v any) (any, error) {
					return to.convert(v), nil
				},
			})
		}
	}
}

// registerStringConverters wires any->string (canonical textual form) and
// string->numeric/bool (parsing, failing on malformed input).
func registerStringConverters(r *Registry) {
	stringInfo := typeinfo.Of[string]()
	boolInfo := typeinfo.Of[bool]()

	for _, nt := range numericTypes() {
		nt := nt
		r.RegisterConverter(nt.info, Converter{
			Target:  stringInfo,
			Convert: func(v any) (any, error) { return nt.toS(v), nil },
		})
		r.RegisterConverter(stringInfo, Converter{
			Target:  nt.info,
			Convert: func(v any) (any, error) { return nt.fromS(v.(string)) },
		})
	}

	r.RegisterConverter(boolInfo, Converter{
		Target:  stringInfo,
		Convert: func(v any) (any, error) { return strconv.FormatBool(v.(bool)), nil },
	})
	r.RegisterConverter(stringInfo, Converter{
		Target: boolInfo,
		Convert: func(v any) (any, error) {
			b, err := strconv.ParseBool(v.(string))
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	})
}

// registerByteConverters wires byte<->integer using the byte's underlying
// 8-bit width.
func registerByteConverters(r *Registry) {
	byteInfo := typeinfo.Of[Byte]()
	stringInfo := typeinfo.Of[string]()

	r.RegisterConverter(byteInfo, Converter{
		Target:  stringInfo,
		Convert: func(v any) (any, error) { return strconv.FormatUint(uint64(v.(Byte)), 10), nil },
	})
	r.RegisterConverter(stringInfo, Converter{
		Target: byteInfo,
		Convert: func(v any) (any, error) {
			n, err := strconv.ParseUint(v.(string), 10, 8)
			if err != nil {
				return nil, err
			}
			return Byte(n), nil
		},
	})

	byteRType := reflect.TypeOf(Byte(0))
	for _, nt := range numericTypes() {
		nt := nt
		r.RegisterConverter(byteInfo, Converter{
			Target:  nt.info,
			Convert: func(v any) (any, error) { return nt.convert(v), nil },
		})
		r.RegisterConverter(nt.info, Converter{
			Target: byteInfo,
			Convert: func(v any) (any, error) {
				return reflect.ValueOf(v).Convert(byteRType).Interface(), nil
			},
		})
	}
}
