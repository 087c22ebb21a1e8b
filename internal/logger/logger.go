package logger

// Logging follows the shape of the upstream esbuild logger: messages are
// streamed through a callback as they're discovered, carry an optional
// source location, and are sorted by location once collection is done.
// This bundler only ever needs deferred in-memory logs (there is no
// incremental watch mode), so the terminal-width/color machinery of the
// original has been cut down to the parts that matter here.

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Note
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		panic("internal error")
	}
}

type Msg struct {
	Kind  MsgKind
	Data  MsgData
	Notes []MsgData
}

type MsgData struct {
	Text     string
	Location *MsgLocation
}

type MsgLocation struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

// Loc is a 0-based byte offset from the start of a source file.
type Loc struct {
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

type sortableMsgs []Msg

func (a sortableMsgs) Len() int      { return len(a) }
func (a sortableMsgs) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a sortableMsgs) Less(i, j int) bool {
	ai, aj := a[i], a[j]
	aiLoc, ajLoc := ai.Data.Location, aj.Data.Location
	if aiLoc == nil || ajLoc == nil {
		return aiLoc == nil && ajLoc != nil
	}
	if aiLoc.File != ajLoc.File {
		return aiLoc.File < ajLoc.File
	}
	if aiLoc.Line != ajLoc.Line {
		return aiLoc.Line < ajLoc.Line
	}
	if aiLoc.Column != ajLoc.Column {
		return aiLoc.Column < ajLoc.Column
	}
	return ai.Data.Text < aj.Data.Text
}

// Source is one input module's identity plus its raw text, used to turn
// byte offsets into human-readable line/column locations.
type Source struct {
	Index          uint32
	PrettyPath     string
	IdentifierName string
	Contents       string
}

func (s *Source) TextForRange(r Range) string {
	return s.Contents[r.Loc.Start : r.Loc.Start+r.Len]
}

func (s *Source) LocationForLoc(loc Loc) *MsgLocation {
	if s == nil {
		return nil
	}
	lineStart := int32(0)
	line := 1
	for i := int32(0); i < loc.Start && int(i) < len(s.Contents); i++ {
		if s.Contents[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := int32(len(s.Contents))
	if idx := strings.IndexByte(s.Contents[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + int32(idx)
	}
	return &MsgLocation{
		File:     s.PrettyPath,
		Line:     line,
		Column:   int(loc.Start - lineStart),
		LineText: s.Contents[lineStart:lineEnd],
	}
}

func RangeData(source *Source, r Range, text string) MsgData {
	var loc *MsgLocation
	if source != nil {
		loc = source.LocationForLoc(r.Loc)
		loc.Length = int(r.Len)
	}
	return MsgData{Text: text, Location: loc}
}

// Log streams messages as they're produced. The bundler core never needs
// more than one in-flight log per invocation, so there's a single
// constructor: NewDeferLog collects everything and hands it back sorted
// once the pipeline is done.
type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

func NewDeferLog() Log {
	var msgs sortableMsgs
	var mutex sync.Mutex
	var hasErrors bool

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}

func (log Log) AddError(source *Source, loc Loc, text string) {
	log.AddMsg(Msg{Kind: Error, Data: RangeData(source, Range{Loc: loc}, text)})
}

func (log Log) AddRangeError(source *Source, r Range, text string) {
	log.AddMsg(Msg{Kind: Error, Data: RangeData(source, r, text)})
}

func (log Log) AddWarning(source *Source, loc Loc, text string) {
	log.AddMsg(Msg{Kind: Warning, Data: RangeData(source, Range{Loc: loc}, text)})
}

// MsgString renders a single message the way clang-style compilers do:
// "path:line:col: kind: text". It's deliberately simple — no color, no
// terminal-width wrapping — since this bundler's only consumer is a CLI
// that pipes stderr straight to the user's terminal or a CI log.
func MsgString(msg Msg) string {
	var sb strings.Builder
	if loc := msg.Data.Location; loc != nil {
		fmt.Fprintf(&sb, "%s:%d:%d: ", loc.File, loc.Line, loc.Column+1)
	}
	fmt.Fprintf(&sb, "%s: %s", msg.Kind.String(), msg.Data.Text)
	for _, note := range msg.Notes {
		sb.WriteByte('\n')
		if loc := note.Location; loc != nil {
			fmt.Fprintf(&sb, "  %s:%d:%d: ", loc.File, loc.Line, loc.Column+1)
		}
		sb.WriteString(note.Text)
	}
	return sb.String()
}

func MsgsString(useColor bool, msgs []Msg) string {
	var sb strings.Builder
	for _, msg := range msgs {
		sb.WriteString(MsgString(msg))
		sb.WriteByte('\n')
	}
	return sb.String()
}
