package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sliops/kqlframe/core"
)

func TestParseParam(t *testing.T) {
	ts := time.Date(2023, 5, 11, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		input    string
		expected core.QueryParam
	}{
		{input: "N=abc", expected: core.Param("N", "abc")},
		{input: "N=42", expected: core.Param("N", int64(42))},
		{input: "N=0.5", expected: core.Param("N", 0.5)},
		{input: "N=TRUE", expected: core.Param("N", true)},
		{input: "N=2023-05-11T00:00:00Z", expected: core.Param("N", ts)},
		{input: "N=a=b", expected: core.Param("N", "a=b")},
		{input: "N=", expected: core.Param("N", "")},
		{input: "N:string=42", expected: core.Param("N", "42")},
		{input: "N:int=7", expected: core.Param("N", int32(7))},
		{input: "N:long=7", expected: core.Param("N", int64(7))},
		{input: "N:real=7", expected: core.Param("N", 7.0)},
		{input: "N:bool=1", expected: core.Param("N", true)},
		{input: "N:timespan=1h30m", expected: core.Param("N", 90*time.Minute)},
		{input: "N:datetime=2023-05-11T00:00:00Z", expected: core.Param("N", ts)},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			p, err := parseParam(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, p)
		})
	}
}

func TestParseParam_Invalid(t *testing.T) {
	for _, input := range []string{
		"novalue",
		"=value",
		":string=value",
		"N:decimal=1",
		"N:long=abc",
		"N:datetime=yesterday",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := parseParam(input)
			require.Error(t, err)
		})
	}
}

func TestParamsValue(t *testing.T) {
	r := require.New(t)

	var v paramsValue
	r.NoError(v.Set("A=1"))
	r.NoError(v.Set("B=x"))
	r.Error(v.Set("C"))

	r.Equal([]core.QueryParam{core.Param("A", int64(1)), core.Param("B", "x")}, v.params)
	r.Equal("[A=1,B=x]", v.String())
}
