package store

import (
	"context"
	"database/sql"
)

type (
	tableDef struct {
		Name       string
		Columns    []columnDef
		PrimaryKey []string
		Unique     []uniqueDef
	}

	uniqueDef struct {
		Name    string
		Columns []string
	}

	columnDef struct {
		Name     string
		Datatype string
	}
)

// requireUnique fails unless table has an unique index made of exactly column.
func requireUnique(ctx context.Context, db *sql.DB, table, column string) error {
	td, err := loadTableDef(ctx, db, table)
	if err != nil {
		return err
	}
	for _, u := range td.Unique {
		if len(u.Columns) == 1 && u.Columns[0] == column {
			return nil
		}
	}
	return MissingUniqueIndex{Table: table, Column: column}
}

func loadTableDef(ctx context.Context, db *sql.DB, name string) (*tableDef, error) {
	td := tableDef{
		Name: name,
	}

	type tableInfoRow struct {
		name     string
		datatype string
		pk       bool
	}
	rows, err := db.QueryContext(ctx, `select name, type, pk from pragma_table_info(?) order by name`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var row tableInfoRow
		err = rows.Scan(&row.name, &row.datatype, &row.pk)
		if err != nil {
			return nil, err
		}
		td.Columns = append(td.Columns, columnDef{Name: row.name, Datatype: row.datatype})
		if row.pk {
			td.PrimaryKey = append(td.PrimaryKey, row.name)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(td.Columns) == 0 {
		return nil, sql.ErrNoRows
	}
	uniqueIdx, err := listUniqueIndexes(ctx, db, name)
	if err != nil {
		return nil, err
	}
	for _, v := range uniqueIdx {
		udef, err := loadUniqueDef(ctx, db, v)
		if err != nil {
			return nil, err
		}
		td.Unique = append(td.Unique, udef)
	}
	return &td, nil
}

func loadUniqueDef(ctx context.Context, db *sql.DB, name string) (uniqueDef, error) {
	rows, err := db.QueryContext(ctx, `select name from pragma_index_info(?) order by name`, name)
	if err != nil {
		return uniqueDef{}, err
	}
	defer rows.Close()
	ud := uniqueDef{
		Name: name,
	}
	for rows.Next() {
		var name string
		err = rows.Scan(&name)
		if err != nil {
			return uniqueDef{}, err
		}
		ud.Columns = append(ud.Columns, name)
	}
	return ud, rows.Err()
}

func listUniqueIndexes(ctx context.Context, db *sql.DB, name string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `select name from pragma_index_list(?) where [unique] = 1 order by name`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []string
	for rows.Next() {
		var name string
		err = rows.Scan(&name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, name)
	}
	return ret, rows.Err()
}
