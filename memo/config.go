package memo

// StoreConfig tunes a single store layer.
type StoreConfig struct {
	// EventBufferSize is the capacity of the store's event channel.
	// Zero disables events. Default: 0.
	EventBufferSize int
}

func NewStoreConfig(eventBufferSize int) StoreConfig {
	if eventBufferSize < 0 {
		eventBufferSize = 0
	}
	return StoreConfig{
		EventBufferSize: eventBufferSize,
	}
}

// ContextConfig tunes the store layer a Context creates.
type ContextConfig struct {
	Store StoreConfig
}

func NewContextConfig(eventBufferSize int) ContextConfig {
	return ContextConfig{
		Store: NewStoreConfig(eventBufferSize),
	}
}
