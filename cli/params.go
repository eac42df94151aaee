package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/sliops/kqlframe/core"
)

var _ pflag.Value = (*paramsValue)(nil)

// paramsValue collects repeated --param flags. A parameter is given as
// name=value, where the type is inferred from the value, or as
// name:type=value with one of the query language type names.
type paramsValue struct {
	params []core.QueryParam
}

func (v *paramsValue) String() string {
	parts := make([]string, len(v.params))
	for i, p := range v.params {
		parts[i] = fmt.Sprintf("%s=%v", p.Name, p.Value)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (v *paramsValue) Set(s string) error {
	p, err := parseParam(s)
	if err != nil {
		return err
	}
	v.params = append(v.params, p)
	return nil
}

func (v *paramsValue) Type() string {
	return "name[:type]=value"
}

func parseParam(s string) (core.QueryParam, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok {
		return core.QueryParam{}, fmt.Errorf("parameter %q is not in the name=value form", s)
	}

	name, typ, typed := strings.Cut(key, ":")
	if name == "" {
		return core.QueryParam{}, fmt.Errorf("parameter %q has no name", s)
	}

	if !typed {
		return core.Param(name, inferValue(raw)), nil
	}

	val, err := parseTyped(typ, raw)
	if err != nil {
		return core.QueryParam{}, fmt.Errorf("parameter %q: %w", name, err)
	}
	return core.Param(name, val), nil
}

// inferValue tries long, real, bool and datetime before falling back to string.
func inferValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC()
	}
	return raw
}

func parseTyped(typ, raw string) (any, error) {
	switch typ {
	case core.ParamTypeString.String():
		return raw, nil
	case core.ParamTypeBool.String():
		return strconv.ParseBool(raw)
	case core.ParamTypeInt.String():
		i, err := strconv.ParseInt(raw, 10, 32)
		return int32(i), err
	case core.ParamTypeLong.String():
		return strconv.ParseInt(raw, 10, 64)
	case core.ParamTypeReal.String():
		return strconv.ParseFloat(raw, 64)
	case core.ParamTypeDateTime.String():
		t, err := time.Parse(time.RFC3339Nano, raw)
		return t.UTC(), err
	case core.ParamTypeTimespan.String():
		return time.ParseDuration(raw)
	default:
		return nil, fmt.Errorf("unknown type %q", typ)
	}
}
