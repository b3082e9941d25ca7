package sqlstore

import (
	"context"
	"database/sql"

	"github.com/luno/jettison/errors"

	"github.com/luno/openclaw"
)

// SQLStore keeps the document in two tables, one row per record and one per
// relation. A position column preserves document order. WriteAll replaces both
// tables in one transaction.
type SQLStore struct {
	writer *sql.DB
	reader *sql.DB

	recordTableName   string
	relationTableName string

	recordSelect   string
	relationSelect string
}

func New(writer *sql.DB, reader *sql.DB, recordTableName, relationTableName string) *SQLStore {
	s := &SQLStore{
		writer:            writer,
		reader:            reader,
		recordTableName:   recordTableName,
		relationTableName: relationTableName,
	}

	s.recordSelect = "select " + recordCols + " from " + recordTableName + " order by position"
	s.relationSelect = "select " + relationCols + " from " + relationTableName + " order by position"

	return s
}

var _ openclaw.Store = (*SQLStore)(nil)

func (s *SQLStore) ReadAll(ctx context.Context) (openclaw.Document, error) {
	tx, err := s.reader.BeginTx(ctx, nil)
	if err != nil {
		return openclaw.Document{}, errors.Wrap(err, "begin read")
	}
	defer tx.Rollback()

	records, err := s.listRecords(ctx, tx)
	if err != nil {
		return openclaw.Document{}, err
	}

	relations, err := s.listRelations(ctx, tx)
	if err != nil {
		return openclaw.Document{}, err
	}

	return openclaw.Document{Records: records, Relations: relations}, tx.Commit()
}

func (s *SQLStore) WriteAll(ctx context.Context, doc openclaw.Document) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin write")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "delete from "+s.recordTableName); err != nil {
		return errors.Wrap(err, "clear records")
	}

	if _, err := tx.ExecContext(ctx, "delete from "+s.relationTableName); err != nil {
		return errors.Wrap(err, "clear relations")
	}

	for i, r := range doc.Records {
		if err := s.insertRecord(ctx, tx, i, r); err != nil {
			return err
		}
	}

	for i, rel := range doc.Relations {
		if err := s.insertRelation(ctx, tx, i, rel); err != nil {
			return err
		}
	}

	return tx.Commit()
}
