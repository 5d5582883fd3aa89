package request

type LinkGuestOrdersRequest struct {
	Email string `json:"email" binding:"required,email"`
}
