package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Persistence
	Store          Store
	UserRepository UserRepository

	// Users
	UserDirectory   UserDirectory
	UserInvalidator UserDirectoryInvalidator

	// Communication
	PushGateway   PushGateway
	EmailProvider EmailProvider
	EmailQueue    EmailQueue

	// Cache
	CacheProvider CacheProvider

	// Infrastructure
	ConfigProvider ConfigProvider
	Logger         Logger
	Metrics        MetricsCollector
	Clock          Clock
}
