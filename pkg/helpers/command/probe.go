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

package command

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is how a probed program writes its output.
type Encoding int

const (
	// EncodingUTF8 is plain UTF-8 text.
	EncodingUTF8 Encoding = iota
	// EncodingURL is percent-encoded UTF-8 text, used by helpers which
	// must survive code page conversion of their stdout.
	EncodingURL
	// EncodingUTF16LE is little-endian UTF-16 text.
	EncodingUTF16LE
)

// ProbeOptions configures a Probe.
type ProbeOptions struct {
	// TestArgs are passed to the program by IsAvailable. Defaults to
	// --help when nil.
	TestArgs []string
	Encoding Encoding
	// KeepWhitespace disables trimming of decoded output.
	KeepWhitespace bool
}

// Output is the decoded result of a probe run.
type Output struct {
	Stdout string
	Stderr string
	Status int
}

// Probe runs a fixed external program synchronously and decodes its
// output.
type Probe struct {
	exec     Executor
	program  string
	testArgs []string
	encoding Encoding
	trim     bool
}

// NewProbe returns a Probe for program which runs through exec.
func NewProbe(exec Executor, program string, opts ProbeOptions) *Probe {
	testArgs := opts.TestArgs
	if testArgs == nil {
		testArgs = []string{"--help"}
	}
	return &Probe{
		exec:     exec,
		program:  program,
		testArgs: testArgs,
		encoding: opts.Encoding,
		trim:     !opts.KeepWhitespace,
	}
}

// Program returns the path or name of the probed program.
func (p *Probe) Program() string {
	return p.program
}

func (p *Probe) decode(raw []byte) (string, error) {
	var s string
	switch p.encoding {
	case EncodingURL:
		decoded, err := url.PathUnescape(string(raw))
		if err != nil {
			return "", fmt.Errorf("failed to decode url encoded output: %w", err)
		}
		s = decoded
	case EncodingUTF16LE:
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("failed to decode utf-16 output: %w", err)
		}
		s = string(decoded)
	default:
		s = string(raw)
	}

	if p.trim {
		s = strings.TrimSpace(s)
	}
	return s, nil
}

// Exec runs the program with args and waits for it to exit. Errors
// starting the program or decoding its output are returned as is.
func (p *Probe) Exec(ctx context.Context, args ...string) (Output, error) {
	res, err := p.exec.Exec(ctx, p.program, args...)
	if err != nil {
		return Output{}, fmt.Errorf("failed to execute %s: %w", p.program, err)
	}

	stdout, err := p.decode(res.Stdout)
	if err != nil {
		return Output{}, err
	}
	stderr, err := p.decode(res.Stderr)
	if err != nil {
		return Output{}, err
	}

	return Output{
		Status: res.Status,
		Stdout: stdout,
		Stderr: stderr,
	}, nil
}

// IsAvailable runs the program with its test arguments and reports
// whether it exited with status 0. It never fails, errors are logged.
func (p *Probe) IsAvailable(ctx context.Context) bool {
	out, err := p.Exec(ctx, p.testArgs...)
	if err != nil {
		log.Error().Err(err).Str("program", p.program).Msg("probe is not available")
		return false
	}
	return out.Status == 0
}
