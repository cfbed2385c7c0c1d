package storage

func NewTestMemoryLevelDBBackend() (*LevelDBBackend, error) {
	config, _ := NewConfigFromString("memory://")
	return NewLevelDBBackend(config)
}
