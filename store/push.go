package store

import (
	"context"
	"fmt"
	"log"

	"mediarag/model"
	"mediarag/types"
)

// Indexer embeds passages and persists them together with their document.
// It is the narrow seam between the pipeline's output and the vector store.
type Indexer struct {
	store    DBStorer
	embedder model.EmbedderInterface
}

func NewIndexer(store DBStorer, embedder model.EmbedderInterface) *Indexer {
	return &Indexer{
		store:    store,
		embedder: embedder,
	}
}

// Push upserts the document row, drops any passages of a previous version
// and saves the new passage set. Passages whose embedding fails are saved
// without a vector rather than lost.
func (ix *Indexer) Push(ctx context.Context, doc types.StoredDocument, passages []types.Passage) error {
	if err := ix.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	if err := ix.store.DeletePassagesByDocID(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete stale passages: %w", err)
	}

	for i := range passages {
		embedding, err := ix.embedder.Embed(passages[i].Content)
		if err != nil {
			log.Printf("[INDEX] embedding error for passage %d: %v", passages[i].Index, err)
		} else {
			passages[i].Embedding = embedding
		}

		if err := ix.store.SavePassage(ctx, passages[i]); err != nil {
			return fmt.Errorf("failed to save passage %d: %w", passages[i].Index, err)
		}
	}

	fmt.Printf("[INDEX] saved document %s with %d passages\n", doc.ID, len(passages))
	return nil
}
