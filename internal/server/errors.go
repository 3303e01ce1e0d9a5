package server

import (
	"errors"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

var requestValidator, requestTranslator = newRequestValidator()

// newRequestValidator reports fields by their json names with English messages.
func newRequestValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}
	return validate, trans
}

// invalidArgumentFields maps input errors to the request field that caused them.
var invalidArgumentFields = []struct {
	err   error
	field string
}{
	{err: track.ErrEmptyTitle, field: "title"},
	{err: track.ErrInvalidLevel, field: "level"},
	{err: track.ErrInvalidChapters, field: "chaptersCount"},
	{err: track.ErrUnknownOperation, field: "operation"},
	{err: passage.ErrInvalidSplitPoint, field: "cut"},
	{err: concept.ErrInvalidStatus, field: "status"},
	{err: chapter.ErrInvalidStatus, field: "status"},
	{err: concept.ErrUnknownPassage, field: "passageId"},
	{err: concept.ErrEmptyValidated, field: "passageId"},
	{err: errInvalidDirection, field: "direction"},
}

var errInvalidDirection = errors.New("invalid direction")

// validateRequest checks the validate tags of a request message.
func validateRequest(msg any) *connect.Error {
	err := requestValidator.Struct(msg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	var fieldViolations []*errdetails.BadRequest_FieldViolation
	var messages []string
	for _, fieldError := range validationErrors {
		description := fieldError.Translate(requestTranslator)
		fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       fieldError.Field(),
			Description: description,
		})
		messages = append(messages, description)
	}
	return newInvalidArgument(errors.New(strings.Join(messages, "; ")), fieldViolations)
}

// toConnectError maps service errors to connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, track.ErrTrackNotFound),
		errors.Is(err, track.ErrPassageNotFound),
		errors.Is(err, chapter.ErrChapterNotFound),
		errors.Is(err, concept.ErrConceptNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, track.ErrDocumentNotReady),
		errors.Is(err, passage.ErrCorruptPassages):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}

	for _, entry := range invalidArgumentFields {
		if errors.Is(err, entry.err) {
			return newInvalidArgument(err, []*errdetails.BadRequest_FieldViolation{
				{Field: entry.field, Description: err.Error()},
			})
		}
	}
	return connect.NewError(connect.CodeInternal, err)
}

func newInvalidArgument(err error, fieldViolations []*errdetails.BadRequest_FieldViolation) *connect.Error {
	connectErr := connect.NewError(connect.CodeInvalidArgument, err)
	if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
		FieldViolations: fieldViolations,
	}); detailErr == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}
