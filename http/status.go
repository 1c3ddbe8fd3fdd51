package http

import "strconv"

type Status struct {
	Code         uint
	ReasonPhrase string
}

func (s Status) String() string {
	return strconv.FormatUint(uint64(s.Code), 10) + " " + s.ReasonPhrase
}

// Class returns the first digit of the status code.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15-5
func (s Status) Class() uint { return s.Code / 100 }

// Informational 1XX
var (
	StatusContinue           = Status{100, "Continue"}
	StatusSwitchingProtocols = Status{101, "Switching Protocols"}
)

// Successful 2XX
var (
	StatusOK                   = Status{200, "OK"}
	StatusCreated              = Status{201, "Created"}
	StatusAccepted             = Status{202, "Accepted"}
	StatusNonAuthoritativeInfo = Status{203, "Non-Authoritative Information"}
	StatusNoContent            = Status{204, "No Content"}
	StatusResetContent         = Status{205, "Reset Content"}
	StatusPartialContent       = Status{206, "Partial Content"}
)

// Redirection 3xx
var (
	StatusMultipleChoices   = Status{300, "Multiple Choices"}
	StatusMovedPermanently  = Status{301, "Moved Permanently"}
	StatusFound             = Status{302, "Found"}
	StatusSeeOther          = Status{303, "See Other"}
	StatusNotModified       = Status{304, "Not Modified"}
	StatusTemporaryRedirect = Status{307, "Temporary Redirect"}
	StatusPermanentRedirect = Status{308, "Permanent Redirect"}
)

// Client Error 4xx
var (
	StatusBadRequest           = Status{400, "Bad Request"}
	StatusUnauthorized         = Status{401, "Unauthorized"}
	StatusForbidden            = Status{403, "Forbidden"}
	StatusNotFound             = Status{404, "Not Found"}
	StatusMethodNotAllowed     = Status{405, "Method Not Allowed"}
	StatusNotAcceptable        = Status{406, "Not Acceptable"}
	StatusRequestTimeout       = Status{408, "Request Timeout"}
	StatusConflict             = Status{409, "Conflict"}
	StatusGone                 = Status{410, "Gone"}
	StatusLengthRequired       = Status{411, "Length Required"}
	StatusPreconditionFailed   = Status{412, "Precondition Failed"}
	StatusContentTooLarge      = Status{413, "Content Too Large"}
	StatusURITooLong           = Status{414, "URI Too Long"}
	StatusUnsupportedMediaType = Status{415, "Unsupported Media Type"}
	StatusExpectationFailed    = Status{417, "Expectation Failed"}
	StatusUnprocessableContent = Status{422, "Unprocessable Content"}
	StatusUpgradeRequired      = Status{426, "Upgrade Required"}
)

// Server Error 5xx
var (
	StatusInternalServerError     = Status{500, "Internal Server Error"}
	StatusNotImplemented          = Status{501, "Not Implemented"}
	StatusBadGateway              = Status{502, "Bad Gateway"}
	StatusServiceUnavailable      = Status{503, "Service Unavailable"}
	StatusGatewayTimeout          = Status{504, "Gateway Timeout"}
	StatusHTTPVersionNotSupported = Status{505, "HTTP Version Not Supported"}
)

var statusTable = map[uint]Status{}

func init() {
	for _, s := range []Status{
		StatusContinue, StatusSwitchingProtocols,
		StatusOK, StatusCreated, StatusAccepted, StatusNonAuthoritativeInfo,
		StatusNoContent, StatusResetContent, StatusPartialContent,
		StatusMultipleChoices, StatusMovedPermanently, StatusFound, StatusSeeOther,
		StatusNotModified, StatusTemporaryRedirect, StatusPermanentRedirect,
		StatusBadRequest, StatusUnauthorized, StatusForbidden, StatusNotFound,
		StatusMethodNotAllowed, StatusNotAcceptable, StatusRequestTimeout,
		StatusConflict, StatusGone, StatusLengthRequired, StatusPreconditionFailed,
		StatusContentTooLarge, StatusURITooLong, StatusUnsupportedMediaType,
		StatusExpectationFailed, StatusUnprocessableContent, StatusUpgradeRequired,
		StatusInternalServerError, StatusNotImplemented, StatusBadGateway,
		StatusServiceUnavailable, StatusGatewayTimeout, StatusHTTPVersionNotSupported,
	} {
		statusTable[s.Code] = s
	}
}

// LookupStatus returns the registered status for code.
func LookupStatus(code uint) (Status, bool) {
	s, ok := statusTable[code]
	return s, ok
}
