package metafile

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// MetaData describes a record store directory. LastID is the high-water mark of assigned ids, it
// only ever grows
type MetaData struct {
	Type     string
	Version  string
	Created  string
	Encoding string
	LastID   int32
}

const identifierFileName = "cabinet.meta"

// ErrEmpty is returned when the metafile holds none of the known keys
var ErrEmpty = errors.New("metafile is empty")

// FileName returns the name of the metafile inside a store directory
func FileName() string {
	return identifierFileName
}

// IsDatastore returns true if the given path points to a valid record store.
// For a valid store, the path must point to a directory, and must exist, and
// a file named identifierFileName must be present at the path.
func IsDatastore(fs afero.Fs, path string) (bool, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	isDir, err := afero.IsDir(fs, path)
	if err != nil {
		return false, err
	}
	if !isDir {
		return false, nil
	}

	exists, err = afero.Exists(fs, filepath.Join(path, identifierFileName))
	if err != nil {
		return false, err
	}

	return exists, nil
}

// ReadMetaFile reads the metafile at the given path and returns the MetaData
func ReadMetaFile(fs afero.Fs, path string) (*MetaData, error) {
	file, err := fs.Open(filepath.Join(path, identifierFileName))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	metaData := MetaData{}
	empty := MetaData{}

	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "type":
			metaData.Type = value
		case "version":
			metaData.Version = value
		case "created":
			metaData.Created = value
		case "encoding":
			metaData.Encoding = value
		case "last_id":
			id, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid last_id %q: %w", value, err)
			}
			metaData.LastID = int32(id)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if metaData == empty {
		return nil, ErrEmpty
	}

	return &metaData, nil
}

// WriteMetaFile writes a meta file to the given directory, a file named identifierFileName will be
// written. The contents are written to a temporary file first and then renamed over the old file
func WriteMetaFile(fs afero.Fs, path string, metaData *MetaData) error {
	target := filepath.Join(path, identifierFileName)
	tmp := target + ".tmp"

	file, err := fs.Create(tmp)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "type=%s\n", metaData.Type)
	fmt.Fprintf(writer, "version=%s\n", metaData.Version)
	fmt.Fprintf(writer, "created=%s\n", metaData.Created)
	fmt.Fprintf(writer, "encoding=%s\n", metaData.Encoding)
	fmt.Fprintf(writer, "last_id=%d\n", metaData.LastID)
	if err := writer.Flush(); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return fs.Rename(tmp, target)
}

// IsValidPath returns true if the given directory path is valid for a
// new record store. For a path to be valid,
// 1) There should not be a file at the specified path
//
// 2) If the path is a directory, the directory has to be empty
//
// 3) There should not be an existing store at the given path
//
// 4) The path is also valid if there is nothing at the path (i.e. a new store can be constructed)
func IsValidPath(fs afero.Fs, path string) (bool, string, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, "", err
	}
	if !exists {
		return true, "", nil
	}

	isDir, err := afero.IsDir(fs, path)
	if err != nil {
		return false, "", err
	}
	if !isDir {
		return false, "Path is a file", nil
	}
	datastoreExists, err := IsDatastore(fs, path)
	if err != nil {
		return false, "", err
	}
	if datastoreExists {
		return false, "Record store already exists at the path", nil
	}
	entries, err := afero.ReadDir(fs, path)
	if err != nil {
		return false, "", err
	}
	if len(entries) > 0 {
		return false, "Directory is not empty", nil
	}

	return true, "", nil
}
