package api

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/watchlist/schema"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// AddToListRequest is the body of POST /my-list.
type AddToListRequest struct {
	ContentID   string `json:"contentId" validate:"required,max=128"`
	ContentType string `json:"contentType" validate:"required,oneof=movie tvshow"`
}

// fieldMessages maps a failing field and tag to the client-facing message.
var fieldMessages = map[string]map[string]string{
	"ContentID": {
		"required": schema.MsgContentIDRequired,
		"max":      "contentId must be at most 128 characters",
	},
	"ContentType": {
		"required": schema.MsgContentTypeInvalid,
		"oneof":    schema.MsgContentTypeInvalid,
	},
}

// validateStruct validates s and returns the first failure as an invalid input error.
func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return schema.NewError(schema.KindInvalidInput, "Invalid request body", err)
	}
	first := verrs[0]
	if msg, ok := fieldMessages[first.StructField()][first.Tag()]; ok {
		return schema.InvalidInput(msg)
	}
	return schema.InvalidInput(first.Field() + " is invalid")
}
