// Package http holds the transport-independent building blocks of HTTP/1.x messages:
// protocol versions, methods, status codes, raw field lines and the ordered header set.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc1945
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
