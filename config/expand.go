package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/template"
)

var expandFuncs = template.FuncMap{
	"env":  os.Getenv,
	"exec": shellOutput,
}

// shellOutput runs line with sh and returns its trimmed stdout.
func shellOutput(line string) (string, error) {
	if strings.TrimSpace(line) == "" {
		return "", fmt.Errorf("exec: empty command")
	}

	out, err := exec.Command("sh", "-c", line).Output()
	if err != nil {
		return "", fmt.Errorf("exec %q: %w", line, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// expand renders template helpers in a config value:
//
//	{{ env "VAR" }}   value of an environment variable
//	{{ exec "cmd" }}  trimmed stdout of a shell command
func expand(value string) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("config").Funcs(expandFuncs).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, nil); err != nil {
		return "", fmt.Errorf("execute: %w", err)
	}
	return sb.String(), nil
}
