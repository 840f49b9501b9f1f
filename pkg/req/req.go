package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
	"github.com/Dhoini/personalized-gospels/pkg/res"
)

var validate = validator.New()

// FieldError ошибка валидации конкретного поля
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Decode декодирует JSON из io.Reader в структуру типа T.
func Decode[T any](body io.Reader) (T, error) {
	var payload T
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// IsValid валидирует структуру типа T.
func IsValid[T any](payload T) error {
	return validate.Struct(payload)
}

// FieldErrors переводит ошибки валидатора в список полей
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// HandleBody декодирует, валидирует и обрабатывает тело запроса.
// При ошибке ответ уже отправлен, вызывающему остается вернуться.
func HandleBody[T any](c *gin.Context, log *logger.Logger) (*T, error) {
	body, err := Decode[T](c.Request.Body)
	if err != nil {
		log.Warnw("Failed to decode request body", "path", c.Request.URL.Path, "error", err)
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{Error: "invalid request body", Code: "bad_request"}, log)
		return nil, err
	}

	if err := IsValid(body); err != nil {
		log.Warnw("Request validation failed", "path", c.Request.URL.Path, "error", err)
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{
			Error:   "invalid request data",
			Code:    "validation_error",
			Details: FieldErrors(err),
		}, log)
		return nil, err
	}
	return &body, nil
}
