// Package inputval validates form-input structs using `validate` and
// `label` struct tags. Rules are deliberately few — required and max=N
// on string fields cover every form in the app — so we carry no
// third-party validation engine for them.
//
// Example:
//
//	type createInput struct {
//	    Title string `validate:"required,max=200" label:"Title"`
//	}
//	if result := inputval.Validate(createInput{Title: title}); result.HasErrors() {
//	    // re-render the form with result.First()
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Result collects validation failures in field-declaration order.
type Result struct {
	Errors []string
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first failure message, or "" when valid.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// Validate checks every tagged string field of the struct v. Non-struct
// values and untagged fields are ignored.
func Validate(v any) Result {
	var res Result

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return res
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || field.Type.Kind() != reflect.String {
			continue
		}

		label := field.Tag.Get("label")
		if label == "" {
			label = field.Name
		}
		value := rv.Field(i).String()

		for _, rule := range strings.Split(tag, ",") {
			switch {
			case rule == "required":
				if strings.TrimSpace(value) == "" {
					res.Errors = append(res.Errors, fmt.Sprintf("%s is required.", label))
				}
			case strings.HasPrefix(rule, "max="):
				n, err := strconv.Atoi(strings.TrimPrefix(rule, "max="))
				if err != nil {
					continue
				}
				if utf8.RuneCountInString(value) > n {
					res.Errors = append(res.Errors, fmt.Sprintf("%s must be at most %d characters.", label, n))
				}
			}
		}
	}

	return res
}
