package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  *validator.Validate
	sanitizer *bluemonday.Policy

	empIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,32}$`)
)

func init() {
	validate = validator.New()
	sanitizer = bluemonday.StrictPolicy()

	validate.RegisterValidation("emp_id", validateEmpID)
	validate.RegisterValidation("grade", validateGrade)
}

// Validate 校验结构体 validate 标签
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// Describe 把校验错误转成 "字段: 规则" 形式的简短说明
func Describe(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// ValidEmpID 工号只允许字母、数字、下划线和连字符
func ValidEmpID(id string) bool {
	return empIDPattern.MatchString(id)
}

// SanitizeText 去掉 HTML 标签和控制字符，用于表名、加减分原因等自由文本
func SanitizeText(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = sanitizer.Sanitize(input)

	var b strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func validateEmpID(fl validator.FieldLevel) bool {
	return ValidEmpID(fl.Field().String())
}

// 评级名称，如 A、B+
func validateGrade(fl validator.FieldLevel) bool {
	g := fl.Field().String()
	if g == "" || len(g) > 8 {
		return false
	}
	return !strings.ContainsAny(g, " \t\n<>\"")
}
