package api

import "github.com/Mufasa1738-maina/covid-tracker/store"

var (
	errorMessageMap = map[int64]string{
		999: "internal server error",

		1010: "invalid parameters",
		1011: "cannot parse request",

		1100: "country is not tracked",
		1101: store.ErrNoCovidDataset.Error(),
		1102: "unknown metric",
		1103: store.ErrNoFirstCaseFound.Error(),

		1200: "report generation error",
	}

	errorInternalServer = errorJSON(999)

	errorInvalidParameters  = errorJSON(1010)
	errorCannotParseRequest = errorJSON(1011)

	errorUnknownCountry = errorJSON(1100)
	errorNoDataset      = errorJSON(1101)
	errorUnknownMetric  = errorJSON(1102)

	errorReportGeneration = errorJSON(1200)
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
