package adapters_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sliops/kqlframe/adapters"
	"github.com/sliops/kqlframe/core/mock"
)

func TestMux(t *testing.T) {
	r := require.New(t)

	mux := new(adapters.Mux)

	for _, alias := range []string{"kusto", "adx"} {
		adapter, err := mux.GetAdapter(alias, &adapters.Options{AuthMethod: adapters.AuthAzCLI})
		r.NoError(err)
		r.IsType(&adapters.Kusto{}, adapter)
	}

	_, err := mux.GetAdapter("postgres", nil)
	r.ErrorIs(err, adapters.ErrUnsupportedTypeAlias)

	_, err = mux.GetAdapter("kusto", &adapters.Options{AuthMethod: "bogus"})
	r.ErrorIs(err, adapters.ErrUnsupportedAuthMethod)

	m := mock.NewAdapter()
	r.NoError(mux.AddAdapter("mock", m))
	got, err := mux.GetAdapter("mock", nil)
	r.NoError(err)
	r.Same(m, got)

	r.Error(mux.AddAdapter("", m))
}
