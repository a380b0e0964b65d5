package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  迟到  ", "迟到"},
		{"<b>加班</b>", "加班"},
		{"<script>alert(1)</script>奖励", "奖励"},
		{"a\x00b\x07c", "abc"},
		{"第一行\n第二行", "第一行\n第二行"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), tt.in)
	}
}

func TestValidate(t *testing.T) {
	type req struct {
		EmpID string `validate:"required,emp_id"`
		Grade string `validate:"grade"`
	}

	assert.NoError(t, Validate(req{EmpID: "E1001", Grade: "B+"}))
	assert.Error(t, Validate(req{EmpID: "E 1", Grade: "A"}))
	assert.Error(t, Validate(req{EmpID: "E1", Grade: ""}))
	assert.Error(t, Validate(req{EmpID: "E1", Grade: "<A>"}))
	assert.Error(t, Validate(req{Grade: "A"}))
}

func TestValidEmpID(t *testing.T) {
	assert.True(t, ValidEmpID("emp_01-x"))
	assert.False(t, ValidEmpID(""))
	assert.False(t, ValidEmpID("1' OR '1'='1"))
}

func TestDescribe(t *testing.T) {
	type req struct {
		EmpID string `validate:"required,emp_id"`
	}
	err := Validate(req{EmpID: "E 1"})
	assert.Equal(t, "EmpID: emp_id", Describe(err))
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
