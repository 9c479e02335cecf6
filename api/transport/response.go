package transport

// ErrorBody is the payload of every non-2xx API response. Successful
// responses carry the bare task or task array.
type ErrorBody struct {
	Code  string      `json:"code"`
	Error string      `json:"error"`
	Meta  interface{} `json:"meta,omitempty"`
}

// NewError returns an error body with optional metadata.
func NewError(code string, message string, meta interface{}) ErrorBody {
	return ErrorBody{
		Code:  code,
		Error: message,
		Meta:  meta,
	}
}
