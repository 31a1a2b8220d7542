package config

import (
	"fmt"
	"net"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks cfg's struct-tag constraints (via go-playground/validator)
// plus semantic constraints the tags can't express: that every network
// string actually parses as a CIDR.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if _, _, err := net.ParseCIDR(cfg.Subnet.AllowedNetwork); err != nil {
		return fmt.Errorf("subnet.allowed_network: %w", err)
	}
	for _, n := range cfg.Subnet.ProtectedNetworks {
		if _, _, err := net.ParseCIDR(n); err != nil {
			return fmt.Errorf("subnet.protected_networks: %w", err)
		}
	}

	return nil
}
