package domain

import "strconv"

// File is an image picked by the user on one of the input surfaces.
type File struct {
	Name string
	Size int64
	Data []byte
}

// Parameter is the per-workflow part of a submission. It is implemented only by TargetSizeKB and
// TargetFormat.
type Parameter interface {
	// Endpoint is the service path the submission is posted to.
	Endpoint() string
	// Field returns the multipart form field carrying the parameter.
	Field() (name, value string)
	isParameter()
}

type TargetSizeKB int

func (TargetSizeKB) Endpoint() string { return "/process-image/" }

func (s TargetSizeKB) Field() (string, string) { return "size", strconv.Itoa(int(s)) }

func (TargetSizeKB) isParameter() {}

type TargetFormat Format

func (TargetFormat) Endpoint() string { return "/convert-image/" }

func (f TargetFormat) Field() (string, string) { return "format", string(f) }

func (TargetFormat) isParameter() {}

// SubmissionRequest is built fresh for every submission and never mutated afterwards.
type SubmissionRequest struct {
	File      File
	Parameter Parameter
}

// Message is a chat message addressed to the bot, reduced to what the commands need.
type Message struct {
	ID       int
	ChatID   int64
	Text     string
	FileURL  string
	FileName string
	FileSize int64
}
