package storage

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path"
	"strings"
)

// LoadAuto decodes a json file, gunzipping it first when the name ends with .gz.
func (d *DiskStorage) LoadAuto(data any, filename string) error {
	if strings.HasSuffix(filename, ".gz") {
		return d.LoadGzippedJson(data, filename)
	}
	return d.LoadJson(data, filename)
}

func (p *DiskStorage) SaveGzippedJson(data any, filename string) error {
	fileName, tmpFileName := p.GetFileName(filename)
	if err := os.MkdirAll(path.Dir(fileName), 0o755); err != nil {
		return err
	}

	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}

	zipWriter := gzip.NewWriter(file)
	if err = json.NewEncoder(zipWriter).Encode(data); err != nil {
		_ = zipWriter.Close()
		_ = file.Close()
		_ = os.Remove(tmpFileName)
		return err
	}
	if err = zipWriter.Close(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFileName)
		return err
	}
	if err = file.Close(); err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}

	return os.Rename(tmpFileName, fileName)
}

func (p *DiskStorage) LoadGzippedJson(data any, filename string) error {
	name, _ := p.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer zipReader.Close()

	err = json.NewDecoder(zipReader).Decode(data)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func (p *DiskStorage) SaveJson(data any, name string) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.WriteFile(name, b)
}

func (p *DiskStorage) LoadJson(data any, filename string) error {
	name, _ := p.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	err = json.NewDecoder(file).Decode(data)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// ReadFile returns the raw content, os.ErrNotExist is returned as is.
func (p *DiskStorage) ReadFile(name string) ([]byte, error) {
	fileName, _ := p.GetFileName(name)
	return os.ReadFile(fileName)
}

// WriteFile replaces the file atomically by writing to a temporary file first.
func (p *DiskStorage) WriteFile(name string, data []byte) error {
	fileName, tmpFileName := p.GetFileName(name)
	if err := os.MkdirAll(path.Dir(fileName), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmpFileName, data, 0o644); err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}
	if err := os.Rename(tmpFileName, fileName); err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}
	return nil
}
