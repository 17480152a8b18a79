package stacc

import "fmt"

// ErrorKind classifies a failed dispatch.
type ErrorKind int

const (
	// ErrorNone marks a successful dispatch.
	ErrorNone ErrorKind = iota
	// ErrorValidation: payload missing a required field. Caller bug, never retried.
	ErrorValidation
	// ErrorCredentialsBlocked: the circuit breaker is engaged, nothing was sent.
	ErrorCredentialsBlocked
	// ErrorNetwork: timeout, connection or TLS failure. Transient.
	ErrorNetwork
	// ErrorRemote: the API answered with a non-200 status. Permanent for this payload.
	ErrorRemote
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorValidation:
		return "validation"
	case ErrorCredentialsBlocked:
		return "credentials_blocked"
	case ErrorNetwork:
		return "network"
	case ErrorRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Result is the outcome of one dispatch. It is created and consumed within
// a single Send call and never shared across requests.
type Result struct {
	OK     bool
	Body   map[string]interface{}
	Kind   ErrorKind
	Status int
	Detail string
}

func ok(body map[string]interface{}) Result {
	return Result{OK: true, Body: body}
}

func fail(kind ErrorKind, detail string) Result {
	return Result{Kind: kind, Detail: detail}
}

func failRemote(status int, detail string) Result {
	return Result{Kind: ErrorRemote, Status: status, Detail: detail}
}

// Error renders the failure for logging. Empty for successful results.
func (r Result) Error() string {
	if r.OK {
		return ""
	}
	if r.Kind == ErrorRemote {
		return fmt.Sprintf("%s (status %d): %s", r.Kind, r.Status, r.Detail)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Detail)
}
