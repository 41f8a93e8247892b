package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"mediarag/types"
)

type DBStorer interface {
	SaveDocument(context.Context, types.StoredDocument) error
	GetDocumentByID(context.Context, uuid.UUID) (*types.StoredDocument, error)
	SavePassage(context.Context, types.Passage) error
	DeletePassagesByDocID(context.Context, uuid.UUID) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (p *PostgresStore) GetDocumentByID(ctx context.Context, docID uuid.UUID) (*types.StoredDocument, error) {
	rows, err := p.pool.Query(ctx, "select id, title, source, source_path, namespace, created_at, updated_at, version from documents where id = $1", docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	doc := &types.StoredDocument{}
	if err := rows.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Source,
		&doc.SourcePath,
		&doc.Namespace,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.Version); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *PostgresStore) SaveDocument(ctx context.Context, doc types.StoredDocument) error {
	query := `INSERT INTO documents (id, title, source, source_path, namespace, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			source = EXCLUDED.source,
			source_path = EXCLUDED.source_path,
			namespace = EXCLUDED.namespace,
			updated_at = EXCLUDED.updated_at,
			version = EXCLUDED.version
			`
	_, err := p.pool.Exec(
		ctx,
		query,
		doc.ID,
		doc.Title,
		doc.Source,
		doc.SourcePath,
		doc.Namespace,
		doc.CreatedAt,
		doc.UpdatedAt,
		doc.Version,
	)

	return err
}

func (p *PostgresStore) SavePassage(ctx context.Context, passage types.Passage) error {
	metadata, err := json.Marshal(passage.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal passage metadata: %w", err)
	}

	query := `
    INSERT INTO passages (id, doc_id, position, content, metadata, embedding)
    VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err = p.pool.Exec(ctx, query,
		passage.ID, passage.DocID, passage.Index, passage.Content, metadata, pgvector.NewVector(passage.Embedding),
	)
	return err
}

func (p *PostgresStore) DeletePassagesByDocID(ctx context.Context, docID uuid.UUID) error {
	_, err := p.pool.Exec(ctx, "DELETE FROM passages WHERE doc_id = $1", docID)
	return err
}

func (p *PostgresStore) createTables(ctx context.Context) error {

	query := `
	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		source TEXT,
		source_path TEXT,
		namespace TEXT,
		created_at TIMESTAMP WITH TIME ZONE,
		updated_at TIMESTAMP WITH TIME ZONE,
		version INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_id ON documents(id);

    CREATE EXTENSION IF NOT EXISTS vector;

    CREATE TABLE IF NOT EXISTS passages (
        id UUID PRIMARY KEY,
        doc_id UUID NOT NULL,
        position INT NOT NULL,
        content TEXT NOT NULL,
        metadata JSONB,
        embedding vector(768)
    );

	CREATE INDEX IF NOT EXISTS idx_passages_embedding ON passages USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_passages_doc_id ON passages(doc_id);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
