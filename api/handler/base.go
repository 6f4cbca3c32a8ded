package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/api/transport"
	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/httpcontext"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/logger"
)

var validate = validator.New()

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondPage(ctx *fasthttp.RequestCtx, data interface{}, page transport.Page) {
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(data, page))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, publicMessage(err), nil))
}

// requestLogger returns the handler logger enriched with the request ID.
func (h baseHandler) requestLogger(stdCtx context.Context) *zap.Logger {
	return logger.WithRequestID(stdCtx, h.logger)
}

// accountID returns the authenticated account or writes a 401.
func (h baseHandler) accountID(ctx *fasthttp.RequestCtx) (string, bool) {
	id := string(ctx.Request.Header.Peek(httpcontext.AccountIDHeader))
	if id == "" {
		h.respondError(ctx, domain.ErrNotAuthenticated)
		return "", false
	}
	return id, true
}

// decode unmarshals and validates the request body, writing a 400 on failure.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.respondError(ctx, validationError(err))
		return false
	}
	return true
}

// validationError reports missing required fields as MISSING_FIELD and
// everything else as INVALID.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return domain.WrapError(domain.ErrCodeMissingField, fe.Field()+" is required", err)
		}
	}
	fe := fieldErrs[0]
	return domain.WrapError(domain.ErrCodeInvalid, fe.Field()+" is invalid", err)
}

func mapError(err error) (int, string) {
	switch domain.CodeOf(err) {
	case domain.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized, string(domain.ErrCodeInvalidCredentials)
	case domain.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized, string(domain.ErrCodeNotAuthenticated)
	case domain.ErrCodeMissingField:
		return http.StatusBadRequest, string(domain.ErrCodeMissingField)
	case domain.ErrCodeWeakPassword:
		return http.StatusBadRequest, string(domain.ErrCodeWeakPassword)
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.ErrCodeDuplicateEmail:
		return http.StatusConflict, string(domain.ErrCodeDuplicateEmail)
	case domain.ErrCodePlayerNotFound:
		return http.StatusNotFound, string(domain.ErrCodePlayerNotFound)
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// publicMessage hides wrapped causes from API consumers.
func publicMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Code != domain.ErrCodeInternal {
		return dErr.Message
	}
	return "internal error"
}
