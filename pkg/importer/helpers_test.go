package importer

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadFile(t *testing.T) {
	content := "hello world"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "test.txt")
	if err := downloadFile(context.Background(), ts.URL, dest); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", string(data), content)
	}
}

func TestDownloadFile_Retry(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "retry.txt")
	if err := downloadFile(context.Background(), ts.URL, dest); err != nil {
		t.Fatalf("downloadFile with retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDownloadFile_AllFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "fail.txt")
	err := downloadFile(context.Background(), ts.URL, dest)
	if err == nil {
		t.Error("expected error after all retries exhausted")
	}
}

// writeZip creates a ZIP archive holding the given name -> content members.
func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestUnzipFile(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "a.zip")
	writeZip(t, zipPath, map[string]string{"nested/table.csv": "x", "readme.txt": "y"})

	out := filepath.Join(dir, "out")
	ensureDir(out)
	files, err := unzipFile(zipPath, out)
	if err != nil {
		t.Fatalf("unzipFile: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	if _, err := os.Stat(filepath.Join(out, "table.csv")); err != nil {
		t.Errorf("nested member not flattened: %v", err)
	}
}

func TestPickTable(t *testing.T) {
	got, err := pickTable([]string{"a/doc.pdf", "a/data.TXT", "a/data.csv"})
	if err != nil || got != "a/data.csv" {
		t.Errorf("pickTable = %q, %v", got, err)
	}
	got, err = pickTable([]string{"a/doc.pdf", "a/data.txt"})
	if err != nil || got != "a/data.txt" {
		t.Errorf("pickTable = %q, %v", got, err)
	}
	if _, err := pickTable([]string{"a/data.xlsx"}); err == nil {
		t.Error("expected error without a delimited table")
	}
}

func TestToCSV_TabsAndWindows1252(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	// "Jos\xe9" is windows-1252 for "Jose" with an acute accent.
	os.WriteFile(src, []byte("NAME\tCITY\tSTATE\tLAT\tLON\nSan Jos\xe9 State University\tSan Jos\xe9\tCA\t37.33\t-121.88\n"), 0o644)

	dest := filepath.Join(dir, "out.csv")
	if err := toCSV(src, dest); err != nil {
		t.Fatalf("toCSV: %v", err)
	}
	data, _ := os.ReadFile(dest)
	want := "NAME,CITY,STATE,LAT,LON\nSan José State University,San José,CA,37.33,-121.88\n"
	if string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}
}
