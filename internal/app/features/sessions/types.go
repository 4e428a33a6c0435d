// internal/app/features/sessions/types.go
package sessions

type createRequest struct {
	Title string `json:"title"`
}

type createResponse struct {
	SessionID string `json:"sessionId"`
}

type messageResponse struct {
	Message string `json:"message"`
}
