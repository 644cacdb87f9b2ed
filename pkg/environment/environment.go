package environment

// Environment represents the application runtime environment.
type Environment string

const (
	// Development for local development.
	Development Environment = "development"
	// Staging for pre-production deployments.
	Staging Environment = "staging"
	// Production for production deployments.
	Production Environment = "production"
)

// Parse maps an environment name, including common short forms, onto one
// of the known environments. Unknown names map to Development.
func Parse(name string) Environment {
	switch name {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// IsProduction reports whether name denotes the production environment.
func IsProduction(name string) bool {
	return Parse(name) == Production
}
