package config

// AuthConfig selects how bearer tokens are verified
type AuthConfig struct {
	Provider string // local or casdoor

	CasdoorEndpoint     string
	CasdoorClientID     string
	CasdoorClientSecret string
	CasdoorCertificate  string
	CasdoorOrganization string
	CasdoorApplication  string
}

func (c *AuthConfig) UseCasdoor() bool {
	return c.Provider == "casdoor"
}
