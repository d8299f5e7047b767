package domain

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Notice is the confirmation shown after a successful mutation.
type Notice struct {
	Message string `json:"message"`
}

type MutationResponse[T any] struct {
	Notice Notice `json:"notice"`
	Item   *T     `json:"item,omitempty"`
}
