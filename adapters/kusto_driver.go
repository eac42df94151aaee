package adapters

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-kusto-go/kusto"
	kustoErrors "github.com/Azure/azure-kusto-go/kusto/data/errors"
	"github.com/Azure/azure-kusto-go/kusto/kql"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/sliops/kqlframe/core"
)

var _ core.Driver = (*kustoDriver)(nil)

type kustoDriver struct {
	c       *kusto.Client
	cred    azcore.TokenCredential
	cluster string
}

func newKustoDriver(cluster string, cred azcore.TokenCredential, opts ...kusto.Option) (*kustoDriver, error) {
	kcsb := kusto.NewConnectionStringBuilder(cluster).WithTokenCredential(cred)

	client, err := kusto.New(kcsb, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: kusto.New: %w", core.ErrConnection, err)
	}

	return &kustoDriver{
		c:       client,
		cred:    cred,
		cluster: cluster,
	}, nil
}

func (d *kustoDriver) Query(ctx context.Context, database string, query string, params []core.QueryParam) (*core.Response, error) {
	// the client flattens credential errors into text, so fetch a token first
	// to keep their type
	_, err := d.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{strings.TrimSuffix(d.cluster, "/") + "/.default"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cred.GetToken: %w", core.ErrConnection, err)
	}

	stmt := kql.New("").AddUnsafe(query)

	var opts []kusto.QueryOption
	if len(params) > 0 {
		kparams, err := buildParameters(params)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kusto.QueryParameters(kparams))
	}

	body, err := d.c.QueryToJson(ctx, database, stmt, opts...)
	if err != nil {
		return nil, classifyKustoError(err)
	}

	primary, err := decodePrimaryResult(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	return &core.Response{
		PrimaryResults: []*core.ResultTable{primary},
	}, nil
}

func (d *kustoDriver) Close() {
	_ = d.c.Close()
}

func buildParameters(params []core.QueryParam) (*kql.Parameters, error) {
	kparams := kql.NewParameters()

	for _, p := range params {
		typ, err := p.Type()
		if err != nil {
			return nil, err
		}

		switch typ {
		case core.ParamTypeString:
			kparams.AddString(p.Name, p.Value.(string))
		case core.ParamTypeBool:
			kparams.AddBool(p.Name, p.Value.(bool))
		case core.ParamTypeInt:
			kparams.AddInt(p.Name, p.Value.(int32))
		case core.ParamTypeLong:
			switch v := p.Value.(type) {
			case int:
				kparams.AddLong(p.Name, int64(v))
			case int64:
				kparams.AddLong(p.Name, v)
			}
		case core.ParamTypeReal:
			switch v := p.Value.(type) {
			case float32:
				kparams.AddReal(p.Name, float64(v))
			case float64:
				kparams.AddReal(p.Name, v)
			}
		case core.ParamTypeDateTime:
			kparams.AddDateTime(p.Name, p.Value.(time.Time))
		case core.ParamTypeTimespan:
			kparams.AddTimespan(p.Name, p.Value.(time.Duration))
		}
	}

	return kparams, nil
}

// classifyKustoError separates authentication and transport failures from
// errors the service returned for the query itself.
func classifyKustoError(err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", core.ErrConnection, err)
	}
	return fmt.Errorf("%w: %w", core.ErrQuery, err)
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var httpErr *kustoErrors.HttpError
	if errors.As(err, &httpErr) {
		switch code := httpErr.StatusCode; {
		case code == 401, code == 403, code == 407:
			return true
		case code >= 500:
			return true
		}
		return false
	}

	var kerr *kustoErrors.Error
	if errors.As(err, &kerr) {
		switch kerr.Kind {
		case kustoErrors.KIO, kustoErrors.KTimeout:
			return true
		case kustoErrors.KInternal:
			// token and cloud metadata failures only survive as text
			return strings.Contains(kerr.Error(), "getting token")
		}
	}

	return false
}
