package config

// Version is the product version reported by repositories. Overridden at
// build time with -ldflags "-X github.com/marmos91/dittocmis/pkg/config.Version=...".
var Version = "dev"
