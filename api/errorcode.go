package api

import "github.com/bitmark-inc/georisk-api/store"

var (
	errorMessageMap = map[int64]string{
		999: "internal server error",

		1010: "invalid parameters",
		1011: "cannot parse request",

		1100: store.ErrSiteNotFound.Error(),
		1101: store.ErrRiskScoreNotFound.Error(),
		1102: "query risk score error",
		1103: "trigger background task error",
	}

	errorInternalServer = errorJSON(999)

	errorInvalidParameters  = errorJSON(1010)
	errorCannotParseRequest = errorJSON(1011)

	errorSiteNotFound      = errorJSON(1100)
	errorRiskScoreNotFound = errorJSON(1101)
	errorQueryRiskScore    = errorJSON(1102)
	errorTriggerTask       = errorJSON(1103)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// errorJSON converts an error code to a standardized error object
func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}
