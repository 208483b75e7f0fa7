package http

// RegisterRequest carries email registration fields.
type RegisterRequest struct {
	Name                 string  `json:"name" form:"name" validate:"required,max=255" example:"Jane Cook"`
	Email                string  `json:"email" form:"email" validate:"required,email,max=255" example:"jane@example.com"`
	Password             string  `json:"password" form:"password" validate:"required,min=8" example:"secret123"`
	PasswordConfirmation *string `json:"password_confirmation,omitempty" form:"password_confirmation" validate:"omitempty,eqfield=Password" example:"secret123"`
}

// VerifyOTPRequest carries the code sent after registration.
type VerifyOTPRequest struct {
	Email string `json:"email" form:"email" validate:"required,email" example:"jane@example.com"`
	OTP   string `json:"otp" form:"otp" validate:"required,len=6,numeric" example:"482913"`
}

// EmailRequest is shared by resend-otp and forgot-password.
type EmailRequest struct {
	Email string `json:"email" form:"email" validate:"required,email" example:"jane@example.com"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" form:"password" validate:"required" example:"secret123"`
}

// GoogleLoginRequest carries the Google ID token for login.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" form:"id_token" validate:"required" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ResetPasswordRequest confirms a reset with the emailed code.
type ResetPasswordRequest struct {
	Email                string `json:"email" form:"email" validate:"required,email" example:"jane@example.com"`
	OTP                  string `json:"otp" form:"otp" validate:"required,len=6,numeric" example:"482913"`
	Password             string `json:"password" form:"password" validate:"required,min=8" example:"newsecret45"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password" example:"newsecret45"`
}

// ContactRequest is the public contact form.
type ContactRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=255"`
	Email   string `json:"email" form:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" form:"subject" validate:"required,max=255"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}

// CommentRequest creates or edits a comment.
type CommentRequest struct {
	Body string `json:"body" form:"body" validate:"required,max=1000"`
}

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" form:"description"`
}
