package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want AppFlags
	}{
		{
			name: "long names",
			args: []string{"-mode", "Ingest", "-config", "cfg.yaml", "-targets", "auto_fix, mundo_repcar", "-clean"},
			want: AppFlags{GlobalConfigFile: "cfg.yaml", Mode: "ingest", Targets: []string{"auto_fix", "mundo_repcar"}, Clean: true},
		},
		{
			name: "aliases",
			args: []string{"-m", "upload", "-f", "lista.xlsx", "-t", "auto_express", "-o", "out"},
			want: AppFlags{Mode: "upload", File: "lista.xlsx", Targets: []string{"auto_express"}, OutputDir: "out"},
		},
		{
			name: "long name wins over alias",
			args: []string{"-mode", "report", "-m", "ingest"},
			want: AppFlags{Mode: "report"},
		},
		{
			name: "empty target list",
			args: []string{"-targets", " , "},
			want: AppFlags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFlags(flag.NewFlagSet("pricefeed", flag.ContinueOnError), tt.args)
			assert.Equal(t, tt.want, got)
		})
	}
}
