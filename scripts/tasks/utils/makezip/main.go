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

// Command makezip packages a launcher build for release. It refreshes the
// resource checksums the launcher verifies at runtime and zips the binary
// together with the resources directory.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/tcgl-launcher/pkg/service"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

var supportedPlatforms = map[string]bool{
	"mac":     true,
	"windows": true,
}

type zipItem struct {
	path    string
	arcname string
}

func main() {
	if len(os.Args) < 6 {
		_, _ = fmt.Println("Usage: go run ./scripts/tasks/utils/makezip <platform> <build_dir> <app_bin> <res_dir> <zip_name>")
		os.Exit(1)
	}

	platform := os.Args[1]
	buildDir := os.Args[2]
	appBin := os.Args[3]
	resDir := os.Args[4]
	zipName := os.Args[5]

	if !supportedPlatforms[platform] {
		_, _ = fmt.Printf("Unsupported platform '%s'\n", platform)
		os.Exit(1)
	}

	if _, err := os.Stat(buildDir); os.IsNotExist(err) {
		_, _ = fmt.Printf("The specified directory '%s' does not exist\n", buildDir)
		os.Exit(1)
	}

	appPath := filepath.Join(buildDir, appBin)
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		_, _ = fmt.Printf("The specified binary file '%s' does not exist\n", appPath)
		os.Exit(1)
	}

	if err := service.WriteChecksums(afero.NewOsFs(), resDir); err != nil {
		_, _ = fmt.Printf("Error writing checksums: %v\n", err)
		os.Exit(1)
	}

	items := []zipItem{{appPath, filepath.Base(appPath)}}
	if _, err := os.Stat("LICENSE"); err == nil {
		items = append(items, zipItem{"LICENSE", "LICENSE.txt"})
	}

	resItems, err := collectDir(resDir, "res")
	if err != nil {
		_, _ = fmt.Printf("Error reading resources: %v\n", err)
		os.Exit(1)
	}
	items = append(items, resItems...)

	zipPath := filepath.Join(buildDir, zipName)
	_ = os.Remove(zipPath)

	if err := createZipFile(zipPath, items); err != nil {
		_, _ = fmt.Printf("Error creating zip: %v\n", err)
		os.Exit(1)
	}
}

// collectDir lists every file below dir with its archive name under
// prefix.
func collectDir(dir, prefix string) ([]zipItem, error) {
	var items []zipItem
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		items = append(items, zipItem{
			path:    path,
			arcname: strings.Join([]string{prefix, filepath.ToSlash(rel)}, "/"),
		})
		return nil
	})
	return items, err
}

func createZipFile(zipPath string, items []zipItem) error {
	zipFile, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("error creating zip file: %w", err)
	}
	defer func(zipFile *os.File) {
		_ = zipFile.Close()
	}(zipFile)

	zipWriter := zip.NewWriter(zipFile)

	for _, item := range items {
		if err := addFileToZip(zipWriter, item.path, item.arcname); err != nil {
			_ = zipWriter.Close()
			return fmt.Errorf("error adding file to zip: %w", err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("error finishing zip: %w", err)
	}
	return nil
}

func addFileToZip(zipWriter *zip.Writer, filePath, arcname string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = arcname
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
