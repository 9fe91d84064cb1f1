package users

import "net/http"

// Messages shown to the user, one per outcome.
const (
	MsgCreated              = "User created successfully!"
	MsgUpdated              = "User updated successfully!"
	MsgDeleted              = "User deleted successfully!"
	MsgAllFieldsRequired    = "All fields required"
	MsgAllFieldsAreRequired = "All fields are required"
	MsgInvalidAction        = "Invalid action"
	MsgSomethingWentWrong   = "Something went wrong!"
)

// Kind classifies the outcome of a submission.
type Kind int

const (
	KindSuccess Kind = iota
	KindValidationError
	KindInvalidIntent
	KindInternalError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindValidationError:
		return "validation_error"
	case KindInvalidIntent:
		return "invalid_intent"
	case KindInternalError:
		return "internal_error"
	}
	return "unknown"
}

// Result is the uniform outcome of Dispatcher.Handle. StatusCode is the
// HTTP status the transport should answer with.
type Result struct {
	Kind       Kind
	Message    string
	StatusCode int
}

// Payload is the wire form of a Result: exactly one member is set.
type Payload struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success reports a completed operation with status 200.
func Success(message string) Result {
	return Result{Kind: KindSuccess, Message: message, StatusCode: http.StatusOK}
}

// ValidationFailed reports a rejected submission with status 400.
func ValidationFailed(message string) Result {
	return Result{Kind: KindValidationError, Message: message, StatusCode: http.StatusBadRequest}
}

// InvalidIntent reports an unknown or missing intent with status 400.
func InvalidIntent() Result {
	return Result{Kind: KindInvalidIntent, Message: MsgInvalidAction, StatusCode: http.StatusBadRequest}
}

// InternalError never carries the underlying error text.
func InternalError() Result {
	return Result{Kind: KindInternalError, Message: MsgSomethingWentWrong, StatusCode: http.StatusInternalServerError}
}

// OK reports whether r is a success.
func (r Result) OK() bool { return r.Kind == KindSuccess }

// Payload converts r to its wire form.
func (r Result) Payload() Payload {
	if r.OK() {
		return Payload{Success: r.Message}
	}
	return Payload{Error: r.Message}
}
