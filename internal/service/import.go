package service

import (
	"context"
	"io"
	"strings"

	"todoapi/internal/repo"
	"todoapi/internal/sheet"
)

const titleColumn = "title"

// Import reads the first sheet of the workbook in r and inserts one todo
// per row with a non-blank title, all in a single transaction. It returns
// the number of todos created.
func (s *TodoService) Import(ctx context.Context, r io.Reader) (int, error) {
	records, err := sheet.ReadFirstSheet(r)
	if err != nil {
		return 0, validationErr("file is not a readable spreadsheet: %v", err)
	}
	uow := ImportWrites(records)
	if s.maxImportRows > 0 && len(uow) > s.maxImportRows {
		return 0, validationErr("import has %d rows, limit is %d", len(uow), s.maxImportRows)
	}
	if len(uow) == 0 {
		s.log.Info("import skipped, no titled rows", "rows", len(records))
		return 0, nil
	}

	created, err := s.repo.Exec(ctx, uow)
	if err != nil {
		s.log.Error("import failed", "rows", len(uow), "err", err)
		return 0, err
	}
	s.invalidateCache(ctx)
	s.log.Info("import committed", "rows", len(records), "created", len(created))
	return len(created), nil
}

// ImportWrites projects records onto pending inserts, skipping rows whose
// title is missing or blank.
func ImportWrites(records []sheet.Record) repo.UnitOfWork {
	var uow repo.UnitOfWork
	for _, rec := range records {
		title, ok := rec.Get(titleColumn)
		if !ok {
			continue
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		uow.Add(repo.InsertTodo{Title: title})
	}
	return uow
}
