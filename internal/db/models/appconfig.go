package models

// GlobalConfigKey is the key of the single global configuration record.
const GlobalConfigKey = "GLOBAL"

// AppConfig is the runtime configuration admins can change without a deployment.
type AppConfig struct {
	// UserRestriction is a case-insensitive substring every caller email must contain. Empty means unrestricted.
	UserRestriction string `json:"userRestriction" dynamodbav:"userRestriction" validate:"max=255"`
}

// DefaultAppConfig is used until an admin saved a record.
func DefaultAppConfig() AppConfig {
	return AppConfig{UserRestriction: ""}
}

// IsRestricted reports whether a restriction is active.
func (c AppConfig) IsRestricted() bool {
	return c.UserRestriction != ""
}
