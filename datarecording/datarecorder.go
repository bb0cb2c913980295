// Package datarecording stores measurement result tables in a SQLite
// database so runs on different machines and dates can be compared later.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A DataRecorder records structured result rows into named tables.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one row for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered rows to the database.
	Flush()
}

// New creates a DataRecorder backed by a SQLite file at path (".sqlite3"
// is appended). An empty path gets a generated memprobe_results name.
// Buffered rows are flushed at process exit.
func New(path string) DataRecorder {
	r := &sqliteRecorder{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	r.init()

	atexit.Register(func() { r.Flush() })

	return r
}

// NewWithDB creates a DataRecorder over an existing database handle.
func NewWithDB(db *sql.DB) DataRecorder {
	r := &sqliteRecorder{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { r.Flush() })

	return r
}

// NewRunID generates a unique identifier tying the rows of one measurement
// run together.
func NewRunID() string {
	return xid.New().String()
}

type table struct {
	structType reflect.Type
	rows       []any
}

// sqliteRecorder buffers rows per table and writes them in batched
// transactions.
type sqliteRecorder struct {
	*sql.DB

	dbName       string
	tables       map[string]*table
	batchSize    int
	bufferedRows int
}

func (r *sqliteRecorder) init() {
	if r.dbName == "" {
		r.dbName = "memprobe_results_" + xid.New().String()
	}

	filename := r.dbName + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Recording results to: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	r.DB = db
}

func isAllowedFieldKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)

	for i := 0; i < t.NumField(); i++ {
		if !isAllowedFieldKind(t.Field(i).Type.Kind()) {
			return errors.New(
				"row field " + t.Field(i).Name + " has an unsupported type")
		}
	}

	return nil
}

// CreateTable creates a table with one column per field of sampleEntry.
func (r *sqliteRecorder) CreateTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	r.mustExecute(createTableSQL)

	r.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
		rows:       []any{},
	}
}

// InsertData buffers one row; a full buffer triggers a flush.
func (r *sqliteRecorder) InsertData(tableName string, entry any) {
	t, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	t.rows = append(t.rows, entry)

	r.bufferedRows++
	if r.bufferedRows >= r.batchSize {
		r.Flush()
	}
}

// ListTables returns the names of all created tables.
func (r *sqliteRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

// Flush writes every buffered row in one transaction per call.
func (r *sqliteRecorder) Flush() {
	if r.bufferedRows == 0 {
		return
	}

	r.mustExecute("BEGIN TRANSACTION")
	defer r.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range r.tables {
		if len(t.rows) == 0 {
			continue
		}

		stmt := r.prepareInsert(tableName, t.rows[0])

		for _, row := range t.rows {
			v := reflect.ValueOf(row)

			args := make([]any, 0, v.NumField())
			for i := 0; i < v.NumField(); i++ {
				args = append(args, v.Field(i).Interface())
			}

			if _, err := stmt.Exec(args...); err != nil {
				panic(err)
			}
		}

		t.rows = nil
		stmt.Close()
	}

	r.bufferedRows = 0
}

func (r *sqliteRecorder) mustExecute(query string) sql.Result {
	res, err := r.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func (r *sqliteRecorder) prepareInsert(tableName string, row any) *sql.Stmt {
	placeholders := structs.Names(row)
	for i := range placeholders {
		placeholders[i] = "?"
	}

	sqlStr := "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := r.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}
