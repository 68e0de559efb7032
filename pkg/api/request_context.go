package api

import (
	"errors"
	netHttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/myshop/affinity/pkg/api/http"
)

type RequestContext struct {
	UserId        string
	ClientId      string
	SessionId     string
	Locale        string
	RequestSource string
}

const (
	RequestContextValue = "REQUEST_CONTEXT"
)

// GetRequestContext Build RequestContext from gin context
func GetRequestContext(context *gin.Context) (*RequestContext, error) {
	requestContext := &RequestContext{}
	// get user id (mandatory)
	userId := context.Request.Header.Get(http.HeaderUserId)
	if len(userId) == 0 {
		return nil, errors.New("user id is missing in headers")
	}
	requestContext.UserId = userId

	// get client id (optional)
	requestContext.ClientId = context.Request.Header.Get(http.HeaderClientId)
	requestContext.SessionId = context.Request.Header.Get(http.HeaderSessionId)
	requestContext.Locale = context.Request.Header.Get(http.HeaderLocale)
	requestContext.RequestSource = context.Request.Header.Get(http.HeaderRequestSource)
	return requestContext, nil
}

// UpdateWithHeaders Update headers from request context
func UpdateWithHeaders(header *netHttp.Header, context *RequestContext) {
	header.Set(http.HeaderUserId, context.UserId)
	header.Set(http.HeaderClientId, context.ClientId)
	header.Set(http.HeaderSessionId, context.SessionId)
	header.Set(http.HeaderLocale, context.Locale)
	header.Set(http.HeaderRequestSource, context.RequestSource)
}
