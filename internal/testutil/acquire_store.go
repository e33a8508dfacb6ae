package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/reviewbox/store"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireStore opens an empty database under a temporary directory,
// cleanup closes it and removes the directory.
func AcquireStore(ctx context.Context, t TestLog, name string) (*store.DB, func()) {
	dir, err := os.MkdirTemp("", "reviewbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	db, err := store.Open(ctx, filepath.Join(dir, name+".db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return db, func() {
		err := db.Close()
		if err != nil {
			t.Log("unable to close database", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
