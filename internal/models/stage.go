package models

import "fmt"

// Stage is a media file's position in the intake → edit → verify pipeline.
type Stage string

const (
	StageTodo      Stage = "todo"
	StageCompleted Stage = "completed"
	StageVerified  Stage = "verified"
	StageFlagged   Stage = "flagged"
)

func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageTodo, StageCompleted, StageVerified, StageFlagged:
		return Stage(s), nil
	}
	return "", fmt.Errorf("unrecognized workflow stage %q", s)
}

func (s Stage) String() string { return string(s) }

// MediaKind distinguishes what a file is, independent of where it sits in the
// pipeline.
type MediaKind string

const (
	MediaKindRaw    MediaKind = "raw"
	MediaKindEdited MediaKind = "edited"
	MediaKindExtra  MediaKind = "extra"
)

func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case MediaKindRaw, MediaKindEdited, MediaKindExtra:
		return MediaKind(s), nil
	}
	return "", fmt.Errorf("unrecognized media kind %q", s)
}

func (k MediaKind) String() string { return string(k) }
