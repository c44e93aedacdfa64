// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package audit records fragment fetches as spans and logs them through zerolog.
package audit

import (
	"context"
	"fmt"
	"os"
	"path"
	"runtime/trace"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Span represents a fragment fetch in flight.
type Span struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration

	Destination TrafficDestination
	RequestID   string
	Method      string
	URL         string
	StatusCode  int
	Error       error
	Body        []byte // Body is not logged as is; only for fragment saving

	fragmentFilename string // fragmentFilename logs the filename of a saved fragment
}

// TrafficDestination describes the logical destination of an HTTP request.
type TrafficDestination string

// Constants for traffic destinations.
const (
	ToOrigin TrafficDestination = "origin"

	fragmentFilePermissions = 0o600
)

var (
	// SaveFragments indicates whether to save fetched fragment bodies to storage.
	SaveFragments bool

	// FragmentDirectory is the directory where fragment bodies are saved.
	FragmentDirectory string
)

func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "http."+string(span.Destination))

	return ctx
}

// End closes the span, recording its duration. Safe to call more than once.
func (span *Span) End() {
	if span.task != nil {
		span.duration = time.Since(span.start)
		span.task.End()

		span.task = nil
	}
}

func (span Span) Log() {
	// Handle saving the fragment body
	if span.Destination == ToOrigin && len(span.Body) > 0 && SaveFragments {
		filename := path.Join(FragmentDirectory, span.RequestID)

		if err := os.WriteFile(filename, span.Body, fragmentFilePermissions); err != nil {
			log.Err(err).
				Str("request_id", span.RequestID).
				Msg("Failed to save fragment")
		} else {
			span.fragmentFilename = filename
		}
	}

	event := log.Debug()

	event.Str("sys", "http")
	event.Str("method", span.Method)
	event.Str("url", span.URL)
	event.Int("status_code", span.StatusCode)
	event.Str("len", humanizeSize(len(span.Body)))
	event.Dur("dur", span.duration)
	event.Str("destination", string(span.Destination))
	event.Str("request_id", span.RequestID)

	if span.fragmentFilename != "" {
		event.Str("fragment_filename", span.fragmentFilename)
	}

	if span.Error != nil {
		event.Err(span.Error)
	}

	event.Send()
}

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * bytesInKB
	bytesInGB = bytesInMB * bytesInKB
)

func humanizeSize(x int) string {
	if x < bytesInKB {
		return strconv.Itoa(x)
	}

	if x < bytesInMB {
		return fmt.Sprintf("%.2fK", float64(x)/bytesInKB)
	}

	if x < bytesInGB {
		return fmt.Sprintf("%.2fM", float64(x)/bytesInMB)
	}

	return fmt.Sprintf("%.2fG", float64(x)/bytesInGB)
}
