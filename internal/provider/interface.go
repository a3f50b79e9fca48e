package provider

// DataProvider is the abstraction used by the application when accessing a
// market data source. Implementations own their session lifecycle.
type DataProvider interface {
	GetName() string
	Close() error
}
