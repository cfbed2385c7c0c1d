package storage

type Item struct {
	Key   string
	Value interface{}
}
