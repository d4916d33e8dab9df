package accountsapi

// registerRequest uses pointers so a JSON null or a missing field reads as "".
type registerRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type detailListResponse struct {
	Detail []string `json:"detail"`
}

// Response texts.
const (
	msgCheckEmails = "Check your emails to activate your account"

	detailNotAuthenticated   = "Not authenticated"
	detailInvalidCredentials = "Invalid credentials"
	detailAlreadyActivated   = "User already activated"
	detailCodeExpired        = "Activation code expired"
	detailWrongCode          = "Wrong activation code"
	detailInternal           = "Internal server error"
	detailQueueFull          = "Activation queue is full, retry later"

	labelInvalidBody = "Invalid request body"
	labelInvalidCode = "Invalid activation code"
)

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
