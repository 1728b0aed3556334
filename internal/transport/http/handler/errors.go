package handler

const (
	errInternalServer      = "Internal server error"
	errInvalidInput        = "Invalid input"
	errCredentialsMissing  = "Email and password are required"
	errEmailTaken          = "Email already registered"
	errInvalidCredentials  = "Invalid credentials"
	errUserNotFound        = "User not found"
	errSearchFieldsMissing = "Phone number and country code are required"
	errInvalidLimit        = "Invalid limit"
)
