package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSubmission(t *testing.T) {
	product := 25.0
	var buf bytes.Buffer
	require.NoError(t, printSubmission(&buf, &scoring.Submission{EmpID: "E9", TableID: "1", Product: &product}))
	assert.Contains(t, buf.String(), `"emp_id": "E9"`)
	assert.Contains(t, buf.String(), "合计: 25\n")
}

func TestPrintSubmission_EncodeError(t *testing.T) {
	nan := math.NaN()
	var buf bytes.Buffer
	err := printSubmission(&buf, &scoring.Submission{EmpID: "E9", TableID: "1", Product: &nan})
	assert.ErrorContains(t, err, "encode submission")
	assert.Empty(t, buf.String(), "nothing is printed when encoding fails")
}
