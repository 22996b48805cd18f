package models

// ErrorResponse is the JSON body for all error replies at the API boundary.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MarkReadResponse acknowledges a read sweep.
type MarkReadResponse struct {
	ConversationID uint  `json:"conversationId"`
	Read           int64 `json:"read"`
}
