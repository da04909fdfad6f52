package api

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

const authRealm = `Basic realm="loopthru API"`

var (
	errNoCredentials  = errors.New("authentication required")
	errBadScheme      = errors.New("invalid authentication type")
	errBadCredentials = errors.New("invalid credentials format")
)

// basicAuth guards every operation that declares a security requirement.
type basicAuth struct {
	api  huma.API
	user []byte
	pass []byte
}

func newBasicAuth(api huma.API, user, pass string) *basicAuth {
	return &basicAuth{api: api, user: []byte(user), pass: []byte(pass)}
}

func (a *basicAuth) middleware(ctx huma.Context, next func(huma.Context)) {
	if op := ctx.Operation(); op != nil && len(op.Security) == 0 {
		next(ctx)
		return
	}

	user, pass, err := credentials(ctx)
	if err != nil {
		a.reject(ctx, err)
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), a.user)
	passOK := subtle.ConstantTimeCompare([]byte(pass), a.pass)
	if userOK&passOK != 1 {
		a.reject(ctx, errors.New("invalid credentials"))
		return
	}
	next(ctx)
}

func (a *basicAuth) reject(ctx huma.Context, err error) {
	ctx.SetHeader("WWW-Authenticate", authRealm)
	_ = huma.WriteErr(a.api, ctx, http.StatusUnauthorized, err.Error())
}

// credentials reads basic auth from the Authorization header, or from the
// auth query parameter for EventSource clients that cannot set headers.
func credentials(ctx huma.Context) (user, pass string, err error) {
	encoded := ctx.Query("auth")
	if header := ctx.Header("Authorization"); header != "" {
		var ok bool
		if encoded, ok = strings.CutPrefix(header, "Basic "); !ok {
			return "", "", errBadScheme
		}
	}
	if encoded == "" {
		return "", "", errNoCredentials
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", errBadCredentials
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", errBadCredentials
	}
	return user, pass, nil
}
