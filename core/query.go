package core

import (
	"fmt"
	"time"
)

// ParamType is the query language type a parameter is declared with.
type ParamType int

const (
	ParamTypeUnknown ParamType = iota
	ParamTypeString
	ParamTypeBool
	ParamTypeInt
	ParamTypeLong
	ParamTypeReal
	ParamTypeDateTime
	ParamTypeTimespan
)

func (t ParamType) String() string {
	switch t {
	case ParamTypeString:
		return "string"
	case ParamTypeBool:
		return "bool"
	case ParamTypeInt:
		return "int"
	case ParamTypeLong:
		return "long"
	case ParamTypeReal:
		return "real"
	case ParamTypeDateTime:
		return "datetime"
	case ParamTypeTimespan:
		return "timespan"
	default:
		return "unknown"
	}
}

// QueryParam is a value bound to a declared query parameter, so that
// caller supplied values never end up interpolated into the query text.
type QueryParam struct {
	Name  string
	Value any
}

func Param(name string, value any) QueryParam {
	return QueryParam{Name: name, Value: value}
}

// Type infers the declared type from the Go value.
func (p QueryParam) Type() (ParamType, error) {
	switch p.Value.(type) {
	case string:
		return ParamTypeString, nil
	case bool:
		return ParamTypeBool, nil
	case int32:
		return ParamTypeInt, nil
	case int, int64:
		return ParamTypeLong, nil
	case float32, float64:
		return ParamTypeReal, nil
	case time.Time:
		return ParamTypeDateTime, nil
	case time.Duration:
		return ParamTypeTimespan, nil
	default:
		return ParamTypeUnknown, fmt.Errorf("%w: unsupported type %T for parameter %q", ErrQuery, p.Value, p.Name)
	}
}
