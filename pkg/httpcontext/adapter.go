package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/Daniil-Sakharov/hockey-project-sub001/pkg/logger"
)

const (
	// AccountIDHeader is set by the auth middleware once the bearer credential is verified.
	AccountIDHeader = "X-Account-ID"
	RequestIDHeader = "X-Request-ID"
)

type clientKey struct{}

// Client describes the caller of a directory request.
type Client struct {
	RemoteAddr string
	UserAgent  string
}

// Metadata flattens the client into audit event metadata.
func (c Client) Metadata() map[string]string {
	meta := make(map[string]string, 2)
	if c.RemoteAddr != "" {
		meta["remote_addr"] = c.RemoteAddr
	}
	if c.UserAgent != "" {
		meta["user_agent"] = c.UserAgent
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// ClientFrom returns the caller attached by Attach, if any.
func ClientFrom(ctx context.Context) (Client, bool) {
	if ctx == nil {
		return Client{}, false
	}
	c, ok := ctx.Value(clientKey{}).(Client)
	return c, ok
}

// Adapter turns a fasthttp.RequestCtx into a deadline-bound context carrying
// the request ID, the verified account and the caller.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	ctx.Response.Header.Set(RequestIDHeader, reqID)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if accountID := strings.TrimSpace(string(ctx.Request.Header.Peek(AccountIDHeader))); accountID != "" {
		stdCtx = appLogger.ContextWithAccountID(stdCtx, accountID)
	}

	client := Client{UserAgent: string(ctx.Request.Header.UserAgent())}
	if addr := ctx.RemoteAddr(); addr != nil {
		client.RemoteAddr = addr.String()
	}
	return context.WithValue(stdCtx, clientKey{}, client), cancel
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if header := strings.TrimSpace(string(ctx.Request.Header.Peek(RequestIDHeader))); header != "" {
		return header
	}
	return uuid.NewString()
}
