package validate

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUUID(t *testing.T) {
	t.Run("valid_uuid", func(t *testing.T) {
		assert.True(t, IsUUID("550e8400-e29b-41d4-a716-446655440000"))
	})

	t.Run("invalid_uuid_string", func(t *testing.T) {
		assert.False(t, IsUUID("not-a-uuid"))
	})

	t.Run("empty_string", func(t *testing.T) {
		assert.False(t, IsUUID(""))
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Title string `json:"title"`
		Limit int    `json:"participantLimit"`
	}

	t.Run("valid_json_decoding", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"Chess night","participantLimit":4}`))

		var dst body
		require.NoError(t, DecodeJSON(req, &dst))
		assert.Equal(t, "Chess night", dst.Title)
		assert.Equal(t, 4, dst.Limit)
	})

	t.Run("fail_on_unknown_fields", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"x","views":10}`))

		var dst body
		err := DecodeJSON(req, &dst)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
		assert.Contains(t, err.Error(), "unknown field")
	})

	t.Run("fail_on_wrong_type", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"participantLimit":"ten"}`))

		var dst body
		err := DecodeJSON(req, &dst)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
		assert.Contains(t, err.Error(), "participantLimit")
	})

	t.Run("fail_on_empty_body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var dst body
		err := DecodeJSON(req, &dst)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
		assert.Contains(t, err.Error(), "is required")
	})

	t.Run("fail_on_malformed_json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title": "Syd",`))

		var dst body
		assert.Error(t, DecodeJSON(req, &dst))
	})
}

func TestStruct(t *testing.T) {
	type req struct {
		Title    string   `json:"title" validate:"required,min=3,max=120"`
		Limit    *int     `json:"participantLimit" validate:"omitempty,gte=0"`
		Status   string   `json:"status" validate:"required,oneof=CONFIRMED REJECTED"`
		IDs      []string `json:"requestIds" validate:"required,min=1,dive,uuid"`
		Category string   `json:"category" validate:"omitempty,uuid"`
	}
	neg := -1

	t.Run("valid", func(t *testing.T) {
		err := Struct(req{
			Title:  "Chess night",
			Status: "CONFIRMED",
			IDs:    []string{"550e8400-e29b-41d4-a716-446655440000"},
		})
		assert.NoError(t, err)
	})

	t.Run("collects_field_errors_by_json_name", func(t *testing.T) {
		err := Struct(req{Title: "ab", Limit: &neg, Status: "MAYBE", Category: "x"})
		require.Error(t, err)

		var ae *domain.AppError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, domain.CodeValidation, ae.Code)
		assert.Equal(t, "length must be at least 3", ae.Meta["title"])
		assert.Equal(t, "must be >= 0", ae.Meta["participantLimit"])
		assert.Equal(t, "must be one of: CONFIRMED, REJECTED", ae.Meta["status"])
		assert.Equal(t, "is required", ae.Meta["requestIds"])
		assert.Equal(t, "must be uuid", ae.Meta["category"])
	})
}
