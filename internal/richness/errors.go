package richness

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMissingInput indicates a required input table does not exist.
var ErrMissingInput = errors.New("missing input")

// ErrEmptyIntersection indicates no device appears in all three domains.
var ErrEmptyIntersection = errors.New("empty device intersection")

// ErrDuplicateDevice indicates a device appears twice in one assignment table.
var ErrDuplicateDevice = errors.New("duplicate device")

// MissingInputError reports a required file that could not be found
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("입력 파일이 없습니다: %s", e.Path)
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// EmptyIntersectionError carries each domain's own population so the
// operator can see which source shrank the intersection.
type EmptyIntersectionError struct {
	Populations map[Domain]int
}

func (e *EmptyIntersectionError) Error() string {
	parts := make([]string, 0, len(e.Populations))
	for _, d := range Domains() {
		if n, ok := e.Populations[d]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", d, n))
		}
	}
	return fmt.Sprintf("세 도메인에 공통으로 존재하는 디바이스가 없습니다 (%s)", strings.Join(parts, ", "))
}

func (e *EmptyIntersectionError) Unwrap() error { return ErrEmptyIntersection }

// DuplicateDeviceError is returned under the reject duplicate policy
type DuplicateDeviceError struct {
	Domain   Domain
	DeviceID string
	Line     int
}

func (e *DuplicateDeviceError) Error() string {
	return fmt.Sprintf("%s 할당 테이블에 중복 디바이스 %q (line %d)", e.Domain, e.DeviceID, e.Line)
}

func (e *DuplicateDeviceError) Unwrap() error { return ErrDuplicateDevice }

// WarningKind classifies non-fatal data-quality findings
type WarningKind string

const (
	SchemaWarning            WarningKind = "schema"
	UnresolvedClusterWarning WarningKind = "unresolved_cluster"
	SyntheticHeaderWarning   WarningKind = "synthetic_header"
	MalformedRowWarning      WarningKind = "malformed_row"
	DuplicateRowWarning      WarningKind = "duplicate_row"
)

// Warning is a recovered data-shape issue. The run continues.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Domain Domain      `json:"domain,omitempty"`
	Column string      `json:"column,omitempty"`
	Count  int         `json:"count,omitempty"`
	Detail string      `json:"detail"`
}

func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(string(w.Kind))
	if w.Domain != "" {
		b.WriteString("[" + string(w.Domain) + "]")
	}
	if w.Column != "" {
		b.WriteString(" " + w.Column)
	}
	b.WriteString(": " + w.Detail)
	return b.String()
}

// CountWarnings tallies warnings by kind
func CountWarnings(ws []Warning) map[WarningKind]int {
	out := make(map[WarningKind]int)
	for _, w := range ws {
		out[w.Kind]++
	}
	return out
}

// SortWarnings orders warnings by domain, kind and column for stable output
func SortWarnings(ws []Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Domain != ws[j].Domain {
			return ws[i].Domain < ws[j].Domain
		}
		if ws[i].Kind != ws[j].Kind {
			return ws[i].Kind < ws[j].Kind
		}
		return ws[i].Column < ws[j].Column
	})
}
