package codec

import "strconv"

// Well-known gRPC status codes this agent's closed RPC surface distinguishes
// (spec.md §6 "Wire framing").
const (
	CodeOK                 = 0
	CodeUnavailable        = 5 // mapped from "not found" (spec.md §4.K)
	CodePermissionDenied   = 7
	CodeUnimplemented      = 12
	CodeInternal           = 13
	CodeUnauthenticated    = 16
)

// Status is a (code, message) pair serialized into response trailers without a
// data frame when nonzero (spec.md §4.E "Handlers return either Ok(bytes)...or a
// Status{code, message}, which is serialized into trailers without data").
type Status struct {
	Code    int
	Message string
}

// Trailers renders a Status as the gRPC trailer key/value pairs this agent
// attaches to every unary response (spec.md §6 "Response trailers carry
// grpc-status...and optional grpc-message").
func (s Status) Trailers() map[string]string {
	t := map[string]string{"grpc-status": strconv.Itoa(s.Code)}
	if s.Message != "" {
		t["grpc-message"] = s.Message
	}
	return t
}

// OK is the zero-value success status.
var OK = Status{Code: CodeOK}

// Unimplemented builds the status returned for unknown paths (spec.md §4.E
// "Unknown paths return status 12").
func Unimplemented(path string) Status {
	return Status{Code: CodeUnimplemented, Message: "unimplemented"}
}
