package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// report json names so meta keys match the request body
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// DecodeJSON decodes a single JSON object, rejecting unknown fields and oversized bodies.
// Failures come back as validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return domain.ErrValidationMeta("invalid json body", map[string]string{"body": "is required"})
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		meta := map[string]string{"body": "malformed JSON or invalid fields"}
		var ute *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			meta["body"] = "is required"
		case errors.As(err, &ute) && ute.Field != "":
			meta = map[string]string{ute.Field: "must be " + ute.Type.String()}
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			meta["body"] = strings.TrimPrefix(err.Error(), "json: ")
		}
		return domain.ErrValidationMeta("invalid json body", meta)
	}
	return nil
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Struct runs the validate tags of dst. Field errors are reported as meta keyed by json name.
func Struct(dst any) error {
	err := instance().Struct(dst)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return domain.ErrValidation(err.Error())
	}
	meta := make(map[string]string, len(fes))
	for _, fe := range fes {
		meta[fe.Field()] = formatFieldError(fe)
	}
	return domain.ErrValidationMeta("invalid field", meta)
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "uuid":
		return "must be uuid"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "latitude":
		return "must be a valid latitude"
	case "longitude":
		return "must be a valid longitude"
	default:
		return "is invalid"
	}
}
