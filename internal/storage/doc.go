// Package storage provides SQLite-based persistence for memory items.
//
// The storage layer manages:
//   - Memory items (UUID-keyed text content with optional metadata)
//   - Vector embeddings for memories
//   - An FTS5 full-text index kept in sync by triggers
//
// # Database Schema
//
// Tables:
//   - memories: memory content, title, source URL, JSON metadata
//   - memories_fts: FTS5 external-content index over title and content
//   - embeddings: little-endian float32 vector blobs, one per memory
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.mnemos/mnemos.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	memory := storage.FromItem(item)
//	if err := db.UpsertMemory(ctx, memory); err != nil {
//	    return err
//	}
//
// # Transactions
//
// Use a transaction when storing a memory and its embedding atomically:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.UpsertMemory(ctx, memory)
//	_ = tx.UpsertEmbedding(ctx, embedding)
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Search
//
// FullTextSearch runs a sanitized FTS5 MATCH ranked by BM25, returning
// hits with a normalized positive score and a snippet. VectorSearch
// ranks by cosine similarity against the query embedding. Both return
// best match first, ready for rank fusion.
//
// # Build Tags
//
// CGO build (sqlite_vec tag) uses github.com/mattn/go-sqlite3 and the
// sqlite-vec extension for SQL-level cosine distance. The default pure
// Go build uses modernc.org/sqlite and computes similarity in Go.
package storage
