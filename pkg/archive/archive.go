// TCGL Launcher
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of TCGL Launcher.
//
// TCGL Launcher is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// TCGL Launcher is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with TCGL Launcher.  If not, see <http://www.gnu.org/licenses/>.

// Package archive extracts ZIP archives onto an afero filesystem.
//
// Entries are processed one at a time so single-file extraction can stop
// as soon as the requested entry was written, without decompressing the
// rest of the archive.
package archive

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned when none of the requested entries exist in
	// the archive.
	ErrNotFound = errors.New("archive entry not found")
	// ErrInvalidTarget is returned when a requested entry name refers to a
	// directory.
	ErrInvalidTarget = errors.New("archive target is a directory")
	// ErrUnsafePath is returned when an entry would be written outside of
	// the output directory.
	ErrUnsafePath = errors.New("archive entry escapes output directory")
)

// ExtractionError reports a failure while reading or writing an archive
// entry. The whole extraction is aborted when one is returned.
type ExtractionError struct {
	Err     error
	Archive string
	Entry   string
}

func (e *ExtractionError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
	}
	return fmt.Sprintf("extract %s from %s: %v", e.Entry, e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Reader is an open ZIP archive.
type Reader struct {
	file afero.File
	zr   *zip.Reader
	path string
}

// Open opens the archive at path on fs. The caller must Close it.
func Open(fs afero.Fs, path string) (*Reader, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	return &Reader{
		file: f,
		zr:   zr,
		path: path,
	}, nil
}

// Entries yields every entry of the archive in stored order. Each call
// starts again from the first entry, and iteration may stop at any point.
func (r *Reader) Entries() iter.Seq[*zip.File] {
	return func(yield func(*zip.File) bool) {
		for _, f := range r.zr.File {
			if !yield(f) {
				return
			}
		}
	}
}

// Close releases the underlying archive file.
func (r *Reader) Close() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}

func (r *Reader) close() {
	if err := r.Close(); err != nil {
		log.Warn().Err(err).Str("archive", r.path).Msg("close archive failed")
	}
}

func isDir(name string) bool {
	return strings.HasSuffix(name, "/")
}

// destination joins an entry name onto outputDir, refusing names that
// would resolve outside of it.
func destination(outputDir, name string) (string, error) {
	dest := filepath.Join(outputDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(outputDir, dest)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return dest, nil
}

func extractFile(fs afero.Fs, entry *zip.File, output string) error {
	if err := fs.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	if err := fs.Remove(output); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("failed to remove existing file: %w", err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	perm := entry.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	dst, err := fs.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}

// ExtractAll extracts every file entry of archivePath into outputDir.
// Directory entries are skipped, their directories are created on demand
// as parents of the files inside them. The first failing entry aborts the
// extraction with an *ExtractionError.
func ExtractAll(fs afero.Fs, archivePath, outputDir string) error {
	r, err := Open(fs, archivePath)
	if err != nil {
		return &ExtractionError{Archive: archivePath, Err: err}
	}
	defer r.close()

	count := 0
	for entry := range r.Entries() {
		if isDir(entry.Name) {
			continue
		}

		dest, err := destination(outputDir, entry.Name)
		if err != nil {
			return &ExtractionError{Archive: archivePath, Entry: entry.Name, Err: err}
		}

		if err := extractFile(fs, entry, dest); err != nil {
			return &ExtractionError{Archive: archivePath, Entry: entry.Name, Err: err}
		}
		count++
	}

	log.Debug().
		Str("archive", archivePath).
		Str("output", outputDir).
		Int("files", count).
		Msg("extracted archive")

	return nil
}

func normaliseTargets(names []string) ([]string, error) {
	targets := make([]string, 0, len(names))
	for _, name := range names {
		target := strings.ReplaceAll(name, "\\", "/")
		if isDir(target) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, name)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// ExtractOne extracts the entry called name from archivePath to the file
// outputPath. Scanning stops at the first matching entry. ErrNotFound is
// returned, and nothing is written, when the archive holds no such entry.
func ExtractOne(fs afero.Fs, archivePath, name, outputPath string) error {
	targets, err := normaliseTargets([]string{name})
	if err != nil {
		return err
	}

	r, err := Open(fs, archivePath)
	if err != nil {
		return &ExtractionError{Archive: archivePath, Err: err}
	}
	defer r.close()

	for entry := range r.Entries() {
		if entry.Name != targets[0] {
			continue
		}
		if err := extractFile(fs, entry, outputPath); err != nil {
			return &ExtractionError{Archive: archivePath, Entry: entry.Name, Err: err}
		}
		return nil
	}

	return fmt.Errorf("%w: %s in %s", ErrNotFound, name, archivePath)
}

// ExtractMany extracts each named entry of archivePath to
// outputDir/<entry name>. Scanning stops once every name was extracted.
// ErrNotFound is returned when none of the names matched an entry.
func ExtractMany(fs afero.Fs, archivePath string, names []string, outputDir string) error {
	targets, err := normaliseTargets(names)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("%w: no entry names given", ErrNotFound)
	}

	remaining := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		remaining[t] = struct{}{}
	}

	r, err := Open(fs, archivePath)
	if err != nil {
		return &ExtractionError{Archive: archivePath, Err: err}
	}
	defer r.close()

	found := 0
	for entry := range r.Entries() {
		if _, ok := remaining[entry.Name]; !ok {
			continue
		}

		dest, err := destination(outputDir, entry.Name)
		if err != nil {
			return &ExtractionError{Archive: archivePath, Entry: entry.Name, Err: err}
		}
		if err := extractFile(fs, entry, dest); err != nil {
			return &ExtractionError{Archive: archivePath, Entry: entry.Name, Err: err}
		}

		delete(remaining, entry.Name)
		found++
		if len(remaining) == 0 {
			break
		}
	}

	if found == 0 {
		return fmt.Errorf("%w: %s in %s", ErrNotFound, strings.Join(names, ", "), archivePath)
	}
	if len(remaining) > 0 {
		log.Warn().
			Str("archive", archivePath).
			Int("missing", len(remaining)).
			Msg("some requested archive entries were not found")
	}

	return nil
}

// IsZip reports whether path has a .zip extension.
func IsZip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}
