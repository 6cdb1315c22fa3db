package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/casos-paranormales/casos-cli/lib/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCountries(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeCountries(&out, []location.Country{
		{Name: "Perú", Code: "PE", Region: "Americas", Capital: "Lima"},
		{Name: "Chile", Code: "CL"},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"PAÍS", "CÓDIGO", "REGIÓN", "CAPITAL"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Perú", "PE", "Americas", "Lima"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Chile", "CL", "-", "-"}, strings.Fields(lines[2]))
}
