package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/swarmnav/pkg/engine/routing"
	"github.com/lintang-b-s/swarmnav/pkg/util"
	"go.uber.org/zap"
)

type envelope map[string]any

// requestValidator. validator with english messages, shared by the http and websocket handlers.
type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return &requestValidator{validate: validate, trans: trans}
}

func (rv *requestValidator) Struct(request any) error {
	if err := rv.validate.Struct(request); err != nil {
		vv := translateError(err, rv.trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		return fmt.Errorf("validation error: %v", vvString)
	}
	return nil
}

func translateError(err error, trans ut.Translator) []error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

func writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func newErrorResponse(status int, message string) errorResponse {
	var resp errorResponse
	resp.Error.Code = http.StatusText(status)
	resp.Error.Message = message
	return resp
}

func (api *routingAPI) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := writeJSON(w, status, envelope{"error": newErrorResponse(status, message).Error}, nil); err != nil {
		api.log.Error("writing error response", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *routingAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.writeError(w, r, http.StatusBadRequest, err.Error())
}

func (api *routingAPI) NotFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.writeError(w, r, http.StatusNotFound, err.Error())
}

func (api *routingAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	api.writeError(w, r, http.StatusInternalServerError, util.MessageInternalServerError)
}

// getStatusCode. maps error codes to an http status and writes the error body.
func (api *routingAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	api.writeError(w, r, statusCode(err), errorMessage(err))
	if statusCode(err) == http.StatusInternalServerError {
		api.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, util.ErrBadParamInput), errors.Is(err, routing.ErrUnknownNode),
		errors.Is(err, routing.ErrUnknownStrategy), errors.Is(err, routing.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.Is(err, util.ErrNotFound), errors.Is(err, routing.ErrNoPathFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	if statusCode(err) == http.StatusInternalServerError {
		return util.MessageInternalServerError
	}
	return err.Error()
}
