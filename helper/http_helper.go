package helper

import (
	"errors"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	entranslations "gopkg.in/go-playground/validator.v9/translations/en"
)

const (
	textError = `error`
	textOk    = `ok`
)

// ResponseHelper ...
type ResponseHelper struct {
	C        *gin.Context
	Status   string
	Message  interface{}
	Data     interface{}
	Code     int
	CodeType string
}

// HTTPHelper writes the JSON envelope {code, code_type, code_message, data}
// and validates request payloads.
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewHTTPHelper builds a helper with English validation messages and the
// project's custom rules registered.
func NewHTTPHelper() *HTTPHelper {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = entranslations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return IsWebURL(fl.Field().String())
	})
	_ = v.RegisterTranslation("weburl", trans, func(t ut.Translator) error {
		return t.Add("weburl", "{0} must be an http(s) URL or a path starting with /", true)
	}, func(t ut.Translator, fe validator.FieldError) string {
		msg, _ := t.T("weburl", fe.Field())
		return msg
	})

	return &HTTPHelper{Validate: v, Translator: trans}
}

// ValidateStruct runs the validator and converts failures into a
// validation ApiErr keyed by field path.
func (u *HTTPHelper) ValidateStruct(s interface{}) error {
	err := u.Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.NewInternalErrorWithCause("validate payload", err)
	}
	return errs.NewValidationError(u.fieldMessages(verrs))
}

func (u *HTTPHelper) fieldMessages(validationErrors validator.ValidationErrors) map[string][]string {
	fields := map[string][]string{}
	translated := validationErrors.Translate(u.Translator)
	for _, err := range validationErrors {
		key := fieldPath(err)
		fields[key] = append(fields[key], translated[err.Namespace()])
	}
	return fields
}

// fieldPath drops the struct name from the namespace so nested fields read
// like "translations[0].locale".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return Underscore(err.Field())
}

// SetResponse ...
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message interface{}, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{c, status, message, data, code, codeType}
}

// SendError ...
// Send error response to consumers.
func (u *HTTPHelper) SendError(c *gin.Context, message interface{}, data interface{}, code int, codeType string) {
	u.SendResponse(u.SetResponse(c, textError, message, data, code, codeType))
}

// SendBadRequest ...
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) {
	u.SendError(c, message, data, http.StatusBadRequest, `badRequest`)
}

// SendUnauthorizedError ...
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string, data interface{}) {
	u.SendError(c, message, data, http.StatusUnauthorized, `unAuthorized`)
}

// SendForbiddenError ...
func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string, data interface{}) {
	u.SendError(c, message, data, http.StatusForbidden, `forbidden`)
}

// SendNotFoundError ...
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string, data interface{}) {
	u.SendError(c, message, data, http.StatusNotFound, `notFound`)
}

// SendSuccess ...
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) {
	u.SendResponse(u.SetResponse(c, textOk, message, data, http.StatusOK, `success`))
}

// SendCreated ...
func (u *HTTPHelper) SendCreated(c *gin.Context, message string, data interface{}) {
	u.SendResponse(u.SetResponse(c, textOk, message, data, http.StatusCreated, `success`))
}

// SendAPIError maps any error onto the envelope. Anything that is not an
// *errs.ApiErr is treated as internal. Internal failures are logged with
// their cause chain and reported generically.
func (u *HTTPHelper) SendAPIError(c *gin.Context, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		apiErr = errs.NewInternalErrorWithCause("unexpected error", err)
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		log := logger.WithRequestID(c.GetString("request_id"))
		log.Error().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("error", apiErr.GetFullError()).
			Msg("request failed")
	}

	if len(apiErr.Fields) > 0 {
		u.SendError(c, apiErr.Fields, u.EmptyJsonMap(), apiErr.StatusCode, `validationError`)
		return
	}
	u.SendError(c, apiErr.Message(), u.EmptyJsonMap(), apiErr.StatusCode, codeType(apiErr))
}

func codeType(e *errs.ApiErr) string {
	switch {
	case errs.IsUnauthorized(e):
		return `unAuthorized`
	case errs.IsForbidden(e):
		return `forbidden`
	case errs.IsNotFound(e):
		return `notFound`
	case errs.IsConflict(e):
		return `conflict`
	case errs.IsValidation(e), errs.IsInvalidPath(e):
		return `badRequest`
	case errors.Is(e, errs.ErrUnsupportedMediaType):
		return `unsupportedMediaType`
	case errors.Is(e, errs.ErrTooLarge):
		return `tooLarge`
	default:
		return `internalError`
	}
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) {
	if s, ok := res.Message.(string); ok && len(s) == 0 {
		res.Message = `success`
	}

	res.C.JSON(res.Code, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}

// get pagination URL
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page, limit int) string {
	r := c.Request
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return scheme + "://" + r.Host + r.URL.Path + "?" + q.Encode()
}

// Set paginantion response
func (u *HTTPHelper) GeneratePaging(c *gin.Context, limit, page int, totalRecord int64) map[string]interface{} {
	prevURL, nextURL, firstURL, lastURL := "", "", "", ""

	totalPages := int(math.Ceil(float64(totalRecord) / float64(limit)))

	if totalPages >= page && page > 1 {
		prevURL = u.GetPagingUrl(c, page-1, limit)
		firstURL = u.GetPagingUrl(c, 1, limit)
	}

	if totalPages > page {
		nextURL = u.GetPagingUrl(c, page+1, limit)
	}

	if totalPages >= page && totalPages != page {
		lastURL = u.GetPagingUrl(c, totalPages, limit)
	}

	return map[string]interface{}{
		"total_records": totalRecord,
		"per_page":      limit,
		"current_page":  page,
		"total_pages":   totalPages,
		"links": map[string]interface{}{
			"previous": prevURL,
			"next":     nextURL,
			"first":    firstURL,
			"last":     lastURL,
		},
	}
}
