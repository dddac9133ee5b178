package csvloader

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"support-chat-be/internal/pkg/logger"
	"support-chat-be/pkg/dataloader"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const rowSavepoint = "csv_row"

// Result summarises one file load.
type Result struct {
	Table     string
	File      string
	Rows      int
	Inserted  int
	Failed    int
	Skipped   bool   // file was missing
	ErrorFile string // empty when every row loaded
}

// CSVLoader loads <dataDir>/<table>.csv into the table of one model. Every row
// is coerced and inserted under its own savepoint inside a single transaction,
// so a bad row is rolled back on its own and the file commits once. Rejected
// rows are written with their reason to <errorDir>/errors_<table>.csv.
type CSVLoader struct {
	db       *gorm.DB
	schema   *schema.Schema
	path     string
	errorDir string
	logger   logger.ILogger

	result Result
	errs   []error
}

var _ dataloader.DataLoader = (*CSVLoader)(nil)

func New(db *gorm.DB, model interface{}, dataDir, errorDir string, log logger.ILogger) (*CSVLoader, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "parse model schema")
	}

	table := stmt.Schema.Table
	path := filepath.Join(dataDir, table+".csv")
	return &CSVLoader{
		db:       db,
		schema:   stmt.Schema,
		path:     path,
		errorDir: errorDir,
		logger:   log,
		result:   Result{Table: table, File: path},
	}, nil
}

func (l *CSVLoader) Name() string {
	return l.schema.Table
}

func (l *CSVLoader) Errors() []error {
	return l.errs
}

func (l *CSVLoader) Result() Result {
	return l.result
}

type failure struct {
	record []string
	reason string
}

func (l *CSVLoader) Load() {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		l.result.Skipped = true
		l.logger.Warn("LOADER", "File not found, skipping", map[string]interface{}{"file": l.path})
		return
	}
	if err != nil {
		l.errs = append(l.errs, errors.Wrapf(err, "open %s", l.path))
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		l.errs = append(l.errs, errors.Wrapf(err, "read header of %s", l.path))
		return
	}
	fields, err := l.resolveColumns(header)
	if err != nil {
		l.errs = append(l.errs, err)
		return
	}

	l.logger.Info("LOADER", "Loading file", map[string]interface{}{"table": l.Name(), "file": l.path})

	var failures []failure
	tx := l.db.Begin()
	if tx.Error != nil {
		l.errs = append(l.errs, errors.Wrap(tx.Error, "begin transaction"))
		return
	}

	inserted := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		l.result.Rows++
		if err != nil {
			failures = append(failures, failure{record: record, reason: err.Error()})
			continue
		}

		if err := l.insertRow(tx, fields, record); err != nil {
			failures = append(failures, failure{record: record, reason: err.Error()})
			continue
		}
		inserted++
	}

	if inserted > 0 {
		if err := l.advanceSequence(tx); err != nil {
			l.logger.Warn("LOADER", "Failed to advance id sequence", map[string]interface{}{
				"table": l.Name(),
				"error": err,
			})
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		l.errs = append(l.errs, errors.Wrapf(err, "commit %s", l.Name()))
		inserted = 0
	}

	l.result.Inserted = inserted
	l.result.Failed = len(failures)
	if len(failures) > 0 {
		for _, fl := range failures {
			l.logger.Debug("LOADER", "Row rejected", map[string]interface{}{"table": l.Name(), "reason": fl.reason})
		}
		if err := l.writeFailures(header, failures); err != nil {
			l.errs = append(l.errs, err)
		}
	}

	l.logger.Info("LOADER", "File loaded", map[string]interface{}{
		"table":    l.Name(),
		"rows":     l.result.Rows,
		"inserted": l.result.Inserted,
		"failed":   l.result.Failed,
	})
}

// resolveColumns maps each header to a column of the table. An unknown
// header fails the whole file.
func (l *CSVLoader) resolveColumns(header []string) ([]*schema.Field, error) {
	fields := make([]*schema.Field, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		field := l.schema.LookUpField(name)
		if field == nil || field.DBName == "" {
			return nil, errors.Errorf("%s: column %q does not exist in table %s", l.path, name, l.Name())
		}
		fields[i] = field
	}
	return fields, nil
}

func (l *CSVLoader) insertRow(tx *gorm.DB, fields []*schema.Field, record []string) error {
	row, err := coerceRow(fields, record)
	if err != nil {
		return err
	}

	if err := tx.SavePoint(rowSavepoint).Error; err != nil {
		return errors.Wrap(err, "savepoint")
	}
	if err := tx.Table(l.Name()).Create(row).Error; err != nil {
		if rbErr := tx.RollbackTo(rowSavepoint).Error; rbErr != nil {
			return errors.Wrap(rbErr, "rollback to savepoint")
		}
		return errors.Wrap(err, "insert")
	}
	return tx.Exec("RELEASE SAVEPOINT " + rowSavepoint).Error
}

// advanceSequence moves the serial sequence past the ids taken from the file
// so later inserts do not collide with loaded rows.
func (l *CSVLoader) advanceSequence(tx *gorm.DB) error {
	pk := l.schema.PrioritizedPrimaryField
	if pk == nil || !pk.AutoIncrement {
		return nil
	}
	return tx.Exec(
		"SELECT setval(pg_get_serial_sequence(?, ?), (SELECT COALESCE(MAX(?), 0) + 1 FROM ?), false)",
		l.Name(), pk.DBName, clause.Column{Name: pk.DBName}, clause.Table{Name: l.Name()},
	).Error
}

func (l *CSVLoader) writeFailures(header []string, failures []failure) error {
	path := filepath.Join(l.errorDir, "errors_"+l.Name()+".csv")
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(append(append([]string{}, header...), "error")); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	for _, fl := range failures {
		if err := w.Write(append(append([]string{}, fl.record...), fl.reason)); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}

	l.result.ErrorFile = path
	l.logger.Warn("LOADER", "Rows failed, saved for inspection", map[string]interface{}{
		"table": l.Name(),
		"count": len(failures),
		"file":  path,
	})
	return nil
}
