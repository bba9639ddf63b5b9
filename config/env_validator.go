package config

import (
	"fmt"
	"os"
)

// Environment variable names for the two resolution endpoints.
const (
	EnvMediaAPI = "DOUYIN_MEDIA_API"
	EnvUserAPI  = "DOUYIN_USER_API"
)

// EnvValidator handles validation of required environment variables
type EnvValidator struct{}

// NewEnvValidator creates a new environment validator instance
func NewEnvValidator() *EnvValidator {
	return &EnvValidator{}
}

// ValidateRequired validates that all required environment variables are present
// Returns an error if any required variables are missing
func (e *EnvValidator) ValidateRequired() error {
	requiredVars := []string{EnvMediaAPI, EnvUserAPI}

	var missingVars []string
	for _, varName := range requiredVars {
		if value := os.Getenv(varName); value == "" {
			missingVars = append(missingVars, varName)
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v. Please set these variables in your .env file or environment", missingVars)
	}

	return nil
}

// GetEndpoints returns the media and user API base URLs from environment variables
func (e *EnvValidator) GetEndpoints() (mediaAPI, userAPI string) {
	return os.Getenv(EnvMediaAPI), os.Getenv(EnvUserAPI)
}
