package main

import (
	"github.com/spf13/pflag"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

type Level track.Level

func (l *Level) Set(val string) error {
	level, err := track.ParseLevel(val)
	if err != nil {
		return err
	}
	*l = Level(level)
	return nil
}

func (l Level) String() string {
	return string(l)
}

func (l *Level) Type() string {
	return "level"
}

type Direction passage.Direction

func (d *Direction) Set(val string) error {
	direction, err := passage.ParseDirection(val)
	if err != nil {
		return err
	}
	*d = Direction(direction)
	return nil
}

func (d Direction) String() string {
	return string(d)
}

func (d *Direction) Type() string {
	return "direction"
}

type Status concept.Status

func (s *Status) Set(val string) error {
	status, err := concept.ParseStatus(val)
	if err != nil {
		return err
	}
	*s = Status(status)
	return nil
}

func (s Status) String() string {
	return string(s)
}

func (s *Status) Type() string {
	return "status"
}

type ChapterStatus chapter.Status

func (s *ChapterStatus) Set(val string) error {
	status, err := chapter.ParseStatus(val)
	if err != nil {
		return err
	}
	*s = ChapterStatus(status)
	return nil
}

func (s ChapterStatus) String() string {
	return string(s)
}

func (s *ChapterStatus) Type() string {
	return "status"
}

var (
	_ pflag.Value = (*Level)(nil)
	_ pflag.Value = (*Direction)(nil)
	_ pflag.Value = (*Status)(nil)
	_ pflag.Value = (*ChapterStatus)(nil)
)
