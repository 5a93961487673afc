package utils

const (
	OrganizationName                      = "Poof Stays"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
)
