package blob

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutReturnsServableURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "/files/")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	url, err := store.Put([]byte("blob data"), ".jpg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(url, "/files/") {
		t.Errorf("expected /files/ prefix, got %q", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("expected .jpg suffix, got %q", url)
	}

	name := strings.TrimPrefix(url, "/files/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading stored blob: %v", err)
	}
	if string(data) != "blob data" {
		t.Errorf("unexpected blob contents: %q", data)
	}

	req := httptest.NewRequest("GET", "/"+name, nil)
	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Errorf("expected 200 serving blob, got %d", rec.Code)
	}
	if rec.Body.String() != "blob data" {
		t.Errorf("unexpected served body: %q", rec.Body.String())
	}
}

func TestDistinctNames(t *testing.T) {
	store, err := NewStore(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	a, _ := store.Put([]byte("a"), ".jpg")
	b, _ := store.Put([]byte("b"), ".jpg")
	if a == b {
		t.Error("expected distinct blob names")
	}
}
