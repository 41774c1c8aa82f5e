// Package conf provides the engine configuration, sourced once from the
// process environment and passed explicitly into the components that need it.
package conf

import (
	"fmt"
	"os"
	"strings"

	"github.com/howeyc/gopass"
)

// Config holds the gateway credentials and cloud for one invocation.
// Nothing below main reads the environment - this struct is the only source.
type Config struct {
	// Cloud name, e.g. zscaler, zscalerbeta, zscalerone
	Cloud string
	// Username of the admin account
	Username string
	// Password of the admin account
	Password string
	// APIKey issued in the admin console
	APIKey string
}

// FromEnv reads the ZIA_* variables. The cloud defaults to "zscaler".
func FromEnv() *Config {
	c := &Config{
		Cloud:    os.Getenv("ZIA_CLOUD"),
		Username: os.Getenv("ZIA_USERNAME"),
		Password: os.Getenv("ZIA_PASSWORD"),
		APIKey:   os.Getenv("ZIA_API_KEY"),
	}
	if c.Cloud == "" {
		c.Cloud = "zscaler"
	}
	return c
}

// Missing returns the names of required variables that were not set, so they
// can be reported without echoing any credential values.
func (c *Config) Missing() []string {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "ZIA_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "ZIA_PASSWORD")
	}
	if c.APIKey == "" {
		missing = append(missing, "ZIA_API_KEY")
	}
	return missing
}

// PromptPassword asks for the password interactively when the environment did
// not supply one. The input is masked and never logged.
func (c *Config) PromptPassword() error {
	if c.Password != "" {
		return nil
	}
	for {
		fmt.Printf("Password for %s: ", c.Username)
		password, err := gopass.GetPasswdMasked()
		if err != nil {
			return fmt.Errorf("could not read password: %v", err)
		}
		if len(password) == 0 {
			fmt.Println("Password cannot be empty!")
			continue
		}
		c.Password = string(password)
		return nil
	}
}

// String never exposes secrets.
func (c *Config) String() string {
	return fmt.Sprintf("cloud=%s user=%s", c.Cloud, c.Username)
}

// Describe the missing variables as a single actionable line.
func Describe(missing []string) string {
	return "missing required environment variables: " + strings.Join(missing, ", ")
}
