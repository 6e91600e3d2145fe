package http

// APIResponse is the JSON envelope of every API answer.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError is one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"pattern"`
	Message string                 `json:"message,omitempty" example:"pattern is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
