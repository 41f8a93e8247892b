package model

// EmbedderInterface defines the embedding capability used when pushing
// passages to the vector store.
type EmbedderInterface interface {
	Embed(text string) ([]float32, error)
}
