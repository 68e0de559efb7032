package http

// Request headers recognized by the serving and admin surfaces.
const (
	HeaderUserId        = "MYSHOP-USER-ID"
	HeaderClientId      = "MYSHOP-CLIENT-ID"
	HeaderSessionId     = "MYSHOP-SESSION-ID"
	HeaderAuthToken     = "MYSHOP-AUTH-TOKEN"
	HeaderLocale        = "MYSHOP-LOCALE"
	HeaderRequestSource = "MYSHOP-REQUEST-SOURCE"
)
