// Package sli builds and runs the service level indicator analysis queries.
package sli

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/sliops/kqlframe/core"
)

// Querier runs a query and returns its primary result as a table.
// *core.Client satisfies it.
type Querier interface {
	ExecuteAsTable(ctx context.Context, query string, params ...core.QueryParam) (*core.Table, error)
}

var identifierRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// kqlString renders s as a single quoted KQL string literal.
func kqlString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// kqlIdentifier rejects anything that is not a plain entity name.
func kqlIdentifier(s string) (string, error) {
	if !identifierRegexp.MatchString(s) {
		return "", fmt.Errorf("invalid identifier: %q", s)
	}
	return s, nil
}

func parseTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).
		Funcs(template.FuncMap{
			"string":     kqlString,
			"identifier": kqlIdentifier,
		}).
		Parse(text))
}

func render(tmpl *template.Template, data any) (string, error) {
	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("tmpl.Execute: %w", err)
	}
	return out.String(), nil
}
