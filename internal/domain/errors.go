package domain

// Error type discriminators carried in API error payloads
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeGone         = "gone"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// APIError is the JSON error body returned by every endpoint
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// GetValidationMessage translates a validator tag into a message suitable
// for an API client
func GetValidationMessage(tag string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "uuid":
		return "Must be a valid UUID"
	case "oneof":
		return "Must be one of the allowed values"
	case "min", "gte":
		return "Value is too small"
	case "max", "lte":
		return "Value is too large"
	case "gt":
		return "Must be greater than the minimum"
	case "lt":
		return "Must be less than the maximum"
	case "alphanum":
		return "Must contain only letters and digits"
	case "dive":
		return "Contains invalid entries"
	default:
		return "Validation failed: " + tag
	}
}
