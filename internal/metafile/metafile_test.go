package metafile

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestIsDatastore(t *testing.T) {
	fs := afero.NewMemMapFs()

	// Path does not exist
	exists, err := IsDatastore(fs, "/nonexistent/path")
	if err != nil || exists {
		t.Errorf("Expected false, got %v, error: %v", exists, err)
	}

	// Path is not a directory
	afero.WriteFile(fs, "/nonexistent/path/file.txt", []byte("test"), 0644)
	exists, err = IsDatastore(fs, "/nonexistent/path/file.txt")
	if err != nil || exists {
		t.Errorf("Expected false, got %v, error: %v", exists, err)
	}

	// Path is a directory but identifier file is missing
	fs.MkdirAll("/cabinet", 0755)
	exists, err = IsDatastore(fs, "/cabinet")
	if err != nil || exists {
		t.Errorf("Expected false, got %v, error: %v", exists, err)
	}

	// Valid store
	afero.WriteFile(fs, "/cabinet/cabinet.meta", []byte("type=filecabinet\nversion=1\ncreated=2024-01-01\nencoding=utf-8\nlast_id=4\n"), 0644)
	exists, err = IsDatastore(fs, "/cabinet")
	if err != nil || !exists {
		t.Errorf("Expected true, got %v, error: %v", exists, err)
	}
}

func TestReadMetaFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	// File does not exist
	if _, err := ReadMetaFile(fs, "/nonexistent/path"); err == nil {
		t.Errorf("Expected error, got nil")
	}

	// File exists but is malformed
	afero.WriteFile(fs, "/cabinet/cabinet.meta", []byte("malformed_line"), 0644)
	metaData, err := ReadMetaFile(fs, "/cabinet")
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
	if metaData != nil {
		t.Errorf("Expected nil, got %v", metaData)
	}

	// Bad id
	afero.WriteFile(fs, "/cabinet/cabinet.meta", []byte("type=filecabinet\nlast_id=many\n"), 0644)
	if _, err := ReadMetaFile(fs, "/cabinet"); err == nil {
		t.Errorf("Expected error for bad last_id, got nil")
	}

	// Valid metadata file, unknown keys are ignored
	afero.WriteFile(fs, "/cabinet/cabinet.meta", []byte("type=filecabinet\nversion=1\ncreated=2024-01-01\nencoding=utf-16\nlast_id=42\nmax_datafile_size=1048576\n"), 0644)
	metaData, err = ReadMetaFile(fs, "/cabinet")
	if err != nil {
		t.Fatalf("Expected nil, got error: %v", err)
	}
	expected := MetaData{Type: "filecabinet", Version: "1", Created: "2024-01-01", Encoding: "utf-16", LastID: 42}
	if *metaData != expected {
		t.Errorf("Expected %+v, got %+v", expected, *metaData)
	}
}

func TestWriteMetaFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/cabinet", 0755)
	metaData := &MetaData{
		Type:     "filecabinet",
		Version:  "1",
		Created:  "2024-01-01",
		Encoding: "utf-8",
		LastID:   7,
	}

	if err := WriteMetaFile(fs, "/cabinet", metaData); err != nil {
		t.Fatalf("Expected nil, got error: %v", err)
	}
	readMetaData, err := ReadMetaFile(fs, "/cabinet")
	if err != nil {
		t.Fatalf("Expected nil, got error: %v", err)
	}
	if *readMetaData != *metaData {
		t.Errorf("Expected %+v, got %+v", metaData, readMetaData)
	}

	// Rewriting replaces the previous contents and leaves no temporary file behind
	metaData.LastID = 8
	if err := WriteMetaFile(fs, "/cabinet", metaData); err != nil {
		t.Fatalf("Expected nil, got error: %v", err)
	}
	readMetaData, _ = ReadMetaFile(fs, "/cabinet")
	if readMetaData.LastID != 8 {
		t.Errorf("Expected last_id 8, got %d", readMetaData.LastID)
	}
	if exists, _ := afero.Exists(fs, "/cabinet/cabinet.meta.tmp"); exists {
		t.Errorf("Expected temporary file to be renamed")
	}
}

func TestIsValidPath(t *testing.T) {
	fs := afero.NewMemMapFs()

	valid, _, err := IsValidPath(fs, "/new")
	if err != nil || !valid {
		t.Errorf("Expected missing path to be valid, got %v, %v", valid, err)
	}

	fs.MkdirAll("/empty", 0755)
	valid, _, err = IsValidPath(fs, "/empty")
	if err != nil || !valid {
		t.Errorf("Expected empty directory to be valid, got %v, %v", valid, err)
	}

	afero.WriteFile(fs, "/file", []byte("x"), 0644)
	valid, reason, err := IsValidPath(fs, "/file")
	if err != nil || valid || reason == "" {
		t.Errorf("Expected file to be invalid, got %v, %q, %v", valid, reason, err)
	}

	afero.WriteFile(fs, "/busy/notes.txt", []byte("x"), 0644)
	valid, reason, err = IsValidPath(fs, "/busy")
	if err != nil || valid || reason != "Directory is not empty" {
		t.Errorf("Expected non-empty directory to be invalid, got %v, %q, %v", valid, reason, err)
	}

	WriteMetaFile(fs, "/empty", &MetaData{Type: "filecabinet"})
	valid, reason, err = IsValidPath(fs, "/empty")
	if err != nil || valid || reason != "Record store already exists at the path" {
		t.Errorf("Expected existing store to be invalid, got %v, %q, %v", valid, reason, err)
	}
}
