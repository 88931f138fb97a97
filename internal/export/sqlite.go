// Package export writes a dataset tree out as a queryable SQLite catalog or
// as a plain nested mapping.
package export

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/bidsgraph/internal/graph"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	path TEXT PRIMARY KEY,
	parent TEXT,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	suffix TEXT,
	extension TEXT
);
CREATE INDEX IF NOT EXISTS idx_parent_name ON nodes(parent, name);

CREATE TABLE IF NOT EXISTS entities (
	path TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (path, key)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_entity ON entities(key, value);
`

// Writer stores nodes into a SQLite catalog, committing every batchSize rows.
type Writer struct {
	db         *sql.DB
	tx         *sql.Tx
	stmtNode   *sql.Stmt
	stmtEntity *sql.Stmt
	batchSize  int
	count      int
}

// NewWriter opens (or creates) the catalog at dbPath.
func NewWriter(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", dbPath)
	}
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, pragma)
		}
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	w := &Writer{db: db, batchSize: 10000}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) beginTx() error {
	var err error
	if w.tx, err = w.db.Begin(); err != nil {
		return errors.Wrap(err, "begin")
	}
	w.stmtNode, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO nodes (path, parent, name, type, suffix, extension)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare nodes")
	}
	w.stmtEntity, err = w.tx.Prepare(`INSERT OR REPLACE INTO entities (path, key, value) VALUES (?, ?, ?)`)
	return errors.Wrap(err, "prepare entities")
}

func (w *Writer) commitTx() error {
	if w.stmtNode != nil {
		_ = w.stmtNode.Close()
	}
	if w.stmtEntity != nil {
		_ = w.stmtEntity.Close()
	}
	return errors.Wrap(w.tx.Commit(), "commit")
}

// Add writes one node and, for artifacts, its entities.
func (w *Writer) Add(n graph.Node) error {
	path := graph.RelativePath(n, "")
	var parent *string
	if p := n.Parent(); p != nil {
		pp := graph.RelativePath(p, "")
		parent = &pp
	}

	var suffix, extension *string
	a, isArtifact := n.(*graph.Artifact)
	if isArtifact {
		s, e := a.Suffix(), a.Extension()
		suffix, extension = &s, &e
	} else if l, ok := n.(graph.Leaf); ok {
		e := l.AsFile().Extension()
		extension = &e
	}

	if _, err := w.stmtNode.Exec(path, parent, n.Name(), n.TypeName(), suffix, extension); err != nil {
		return errors.Wrapf(err, "insert node %s", path)
	}
	if isArtifact {
		for _, ref := range a.EntityRefs() {
			if _, err := w.stmtEntity.Exec(path, ref.Key, fmt.Sprint(ref.Value)); err != nil {
				return errors.Wrapf(err, "insert entity %s of %s", ref.Key, path)
			}
		}
	}

	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			return err
		}
		if err := w.beginTx(); err != nil {
			return err
		}
		w.count = 0
	}
	return nil
}

// Close commits pending rows and closes the database.
func (w *Writer) Close() error {
	err := w.commitTx()
	if cerr := w.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// SQLite writes every node below root (root included) to a catalog at dbPath
// and returns the number of rows written.
func SQLite(root graph.Node, dbPath string) (int, error) {
	w, err := NewWriter(dbPath)
	if err != nil {
		return 0, err
	}
	n := 0
	for node := range graph.Traverse(root, false, nil, graph.DefaultDepth) {
		if err := w.Add(node); err != nil {
			_ = w.Close()
			return n, err
		}
		n++
	}
	if err := w.Close(); err != nil {
		return n, err
	}
	logrus.WithFields(logrus.Fields{"db": dbPath, "nodes": n}).Info("Catalog written")
	return n, nil
}
