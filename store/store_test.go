package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadTableInfo(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDB(ctx, t, "test")
	defer cleanup()

	td, err := loadTableDef(ctx, d.db, "users")
	if err != nil {
		t.Fatal(err)
	}

	expected := tableDef{
		Name: "users",
		Columns: []columnDef{
			{Name: "created_at", Datatype: "INTEGER"},
			{Name: "email", Datatype: "TEXT"},
			{Name: "email_hash64", Datatype: "INTEGER"},
			{Name: "password_hash", Datatype: "TEXT"},
			{Name: "user_id", Datatype: "INTEGER"},
		},
		PrimaryKey: []string{"user_id"},
		Unique: []uniqueDef{
			{Name: "sqlite_autoindex_users_1", Columns: []string{"email"}},
		},
	}

	if !reflect.DeepEqual(expected, *td) {
		t.Fatalf("Expecting: %v\nGot: %v", expected, *td)
	}
}

func TestRequireUnique(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDB(ctx, t, "test")
	defer cleanup()

	if err := requireUnique(ctx, d.db, "users", "email"); err != nil {
		t.Fatal(err)
	}
	err := requireUnique(ctx, d.db, "reviews", "product_id")
	if err != (MissingUniqueIndex{Table: "reviews", Column: "product_id"}) {
		t.Fatalf("product_id is not unique, got %v", err)
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	dir, err := os.MkdirTemp("", "reviewbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "nested", "reviewbox.db")

	d, err := Open(ctx, file)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Users().Create(ctx, "a@x.com", "hash"); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	d, err = Open(ctx, file)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	_, found, err := d.Users().FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	} else if !found {
		t.Fatal("user should survive a reopen")
	}
}

func tempDB(ctx context.Context, t interface {
	Fatal(...interface{})
	Log(...interface{})
}, name string) (d *DB, cleanup func()) {
	dir, err := os.MkdirTemp("", "reviewbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	d, err = Open(ctx, filepath.Join(dir, name+".db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return d, func() {
		err := d.Close()
		if err != nil {
			t.Log("unable to close database", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
