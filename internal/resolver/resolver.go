// Package resolver normalizes each domain's device→cluster assignment file
// into canonical (device_id, cluster_id) pairs.
package resolver

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/n0roo/richness-kit/internal/table"
)

// DuplicatePolicy decides what happens when a device repeats within one table
type DuplicatePolicy string

const (
	KeepLast  DuplicatePolicy = "last"
	KeepFirst DuplicatePolicy = "first"
	Reject    DuplicatePolicy = "reject"
)

// Source describes one domain's assignment file
type Source struct {
	Domain        richness.Domain
	Path          string
	Format        table.Format
	IDColumn      string
	ClusterColumn string
	// IDFromFirstColumn treats column 0 as the device id whatever its header
	IDFromFirstColumn bool
	Duplicates        DuplicatePolicy
}

// Result is one domain's canonical assignment table in first-seen order
type Result struct {
	Domain      richness.Domain
	Assignments []richness.Assignment
	Warnings    []richness.Warning
}

// Len returns the device population
func (r *Result) Len() int {
	return len(r.Assignments)
}

// Load reads and resolves an assignment file
func Load(src Source) (*Result, error) {
	t, err := table.Read(src.Path, src.Format)
	if err != nil {
		return nil, err
	}
	return Resolve(t, src)
}

// Resolve maps raw rows to canonical assignments
func Resolve(t *table.Table, src Source) (*Result, error) {
	res := &Result{Domain: src.Domain}

	idIdx, err := res.identifierIndex(t, src)
	if err != nil {
		return nil, err
	}

	clusterCol := src.ClusterColumn
	if clusterCol == "" {
		clusterCol = "cluster"
	}
	clusterIdx := t.Index(clusterCol)
	if clusterIdx < 0 {
		return nil, fmt.Errorf("%s: 클러스터 컬럼 %q 없음 (헤더: %v)", src.Domain, clusterCol, t.Header)
	}

	policy := src.Duplicates
	if policy == "" {
		policy = KeepLast
	}

	positions := make(map[string]int, len(t.Rows))
	malformed, duplicates := 0, 0
	for i, row := range t.Rows {
		id := CanonicalID(table.Cell(row, idIdx))
		cluster, err := table.ParseInt(table.Cell(row, clusterIdx))
		if id == "" || err != nil {
			malformed++
			continue
		}

		pos, seen := positions[id]
		if !seen {
			positions[id] = len(res.Assignments)
			res.Assignments = append(res.Assignments, richness.Assignment{DeviceID: id, ClusterID: cluster})
			continue
		}

		duplicates++
		switch policy {
		case Reject:
			return nil, &richness.DuplicateDeviceError{Domain: src.Domain, DeviceID: id, Line: i + 2}
		case KeepFirst:
		default:
			res.Assignments[pos].ClusterID = cluster
		}
	}

	if malformed > 0 {
		res.Warnings = append(res.Warnings, richness.Warning{
			Kind:   richness.MalformedRowWarning,
			Domain: src.Domain,
			Count:  malformed,
			Detail: "디바이스 ID 또는 클러스터 ID를 해석할 수 없는 행을 건너뜀",
		})
	}
	if duplicates > 0 {
		res.Warnings = append(res.Warnings, richness.Warning{
			Kind:   richness.DuplicateRowWarning,
			Domain: src.Domain,
			Column: richness.DeviceColumn,
			Count:  duplicates,
			Detail: fmt.Sprintf("중복 디바이스 행 처리 정책: %s", policy),
		})
	}
	return res, nil
}

func (r *Result) identifierIndex(t *table.Table, src Source) (int, error) {
	if src.IDFromFirstColumn {
		if len(t.Header) == 0 {
			return -1, fmt.Errorf("%s: 헤더가 비어 있음", src.Domain)
		}
		if IsSyntheticHeader(t.Header[0]) {
			r.Warnings = append(r.Warnings, richness.Warning{
				Kind:   richness.SyntheticHeaderWarning,
				Domain: src.Domain,
				Column: t.Header[0],
				Detail: "자동 생성된 헤더의 첫 컬럼을 device_aid로 사용 (설정 기반 추정)",
			})
		}
		return 0, nil
	}

	idCol := src.IDColumn
	if idCol == "" {
		idCol = richness.DeviceColumn
	}
	idx := t.Index(idCol)
	if idx < 0 {
		return -1, fmt.Errorf("%s: 식별자 컬럼 %q 없음 (헤더: %v, id_from_first_column 설정 확인)", src.Domain, idCol, t.Header)
	}
	return idx, nil
}

// IsSyntheticHeader reports headers written for an unnamed index column
func IsSyntheticHeader(h string) bool {
	h = strings.TrimSpace(h)
	return h == "" || strings.HasPrefix(h, "Unnamed:")
}

// CanonicalID returns the string form used for cross-domain equality.
// Integral float renderings ("42.0") collapse to their integer text so a
// numerically parsed source matches a string source; leading zeros and
// non-numeric ids are kept verbatim. An explicit plus sign is dropped.
func CanonicalID(raw string) string {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		if _, err := strconv.ParseUint(rest, 10, 64); err == nil {
			return rest
		}
	}
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || strings.ContainsAny(s, "eE") {
		return s
	}
	frac := s[dot+1:]
	if frac == "" || strings.Trim(frac, "0") != "" {
		return s
	}
	intPart := s[:dot]
	if _, err := strconv.ParseInt(intPart, 10, 64); err != nil {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err != nil || math.IsInf(f, 0) {
		return s
	}
	return strings.TrimPrefix(intPart, "+")
}
