package form

import (
	"sort"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ValidateStruct runs every rule and reports all failing fields at once as an
// InvalidArgument status with a BadRequest detail.
func ValidateStruct(structPtr interface{}, rules ...*validation.FieldRules) error {
	err := validation.ValidateStruct(structPtr, rules...)
	if err == nil {
		return nil
	}
	ve, ok := err.(validation.Errors)
	if !ok {
		return status.New(codes.Internal, err.Error()).Err()
	}

	fields := make([]string, 0, len(ve))
	for f := range ve {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	br := &errdetails.BadRequest{}
	for _, f := range fields {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f,
			Description: formatErrMsg(ve[f].Error()),
		})
	}

	st, err := status.New(codes.InvalidArgument, "Validation message").WithDetails(br)
	if err != nil {
		return status.New(codes.Internal, err.Error()).Err()
	}
	return st.Err()
}

// Violations returns the field violations carried by a validation error.
func Violations(err error) map[string]string {
	out := map[string]string{}
	for _, d := range status.Convert(err).Details() {
		br, ok := d.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range br.GetFieldViolations() {
			out[v.GetField()] = v.GetDescription()
		}
	}
	return out
}

func formatErrMsg(s string) string {
	return ucfirst(strings.Trim(s, " .")) + "."
}

func ucfirst(str string) string {
	for i, v := range str {
		return string(unicode.ToUpper(v)) + str[i+1:]
	}
	return ""
}
