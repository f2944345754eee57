package dto

// RegisterReq represents the request body for /api/auth/register.
type RegisterReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
}
