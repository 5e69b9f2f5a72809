package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/n0roo/richness-kit/internal/persona"
	"github.com/n0roo/richness-kit/internal/richness"
)

func testRecords() []richness.Record {
	recs := make([]richness.Record, 0, 21)
	for i := 0; i <= 20; i++ {
		recs = append(recs, richness.Record{
			DeviceID:    string(rune('a' + i)),
			CafeCluster: i % 9,
			CafeScore:   richness.Float(float64(i)),
			Overall:     float64(i),
		})
	}
	return recs
}

func loaded(t *testing.T, maxRows int) Model {
	t.Helper()
	m := NewModel("test.csv", func() ([]richness.Record, error) { return testRecords(), nil }, persona.Default(), maxRows)
	msg := m.loadData()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, key string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(Model)
}

func TestLoadAndDescribe(t *testing.T) {
	m := loaded(t, 1000)

	if m.loading {
		t.Fatal("로딩 상태가 해제되지 않음")
	}
	if len(m.filtered) != 21 {
		t.Errorf("filtered = %d, want 21", len(m.filtered))
	}
	if m.summary.Count != 21 || m.summary.Mean != 10 {
		t.Errorf("summary 불일치: %+v", m.summary)
	}

	view := m.View()
	if !strings.Contains(view, "out of 21 total rows") {
		t.Errorf("행 수 안내가 없음: %s", view)
	}
}

func TestFilterKeys(t *testing.T) {
	m := loaded(t, 1000)

	// step = (20-0)/20 = 1
	m = press(m, "]")
	m = press(m, "]")
	m = press(m, "{")

	if m.from != 2 || m.to != 19 {
		t.Errorf("range = [%v, %v], want [2, 19]", m.from, m.to)
	}
	if len(m.filtered) != 18 {
		t.Errorf("filtered = %d, want 18", len(m.filtered))
	}

	// 범위 밖으로 넘어가지 않음
	for i := 0; i < 30; i++ {
		m = press(m, "[")
	}
	if m.from != 0 {
		t.Errorf("from = %v, want 0", m.from)
	}

	m = press(m, "c")
	if len(m.filtered) != 21 {
		t.Errorf("clear 후 filtered = %d, want 21", len(m.filtered))
	}
}

func TestMaxRows(t *testing.T) {
	m := loaded(t, 5)

	if len(m.table.Rows()) != 5 {
		t.Errorf("table rows = %d, want 5", len(m.table.Rows()))
	}
	if !strings.Contains(m.View(), "Displaying top 5 rows out of 21 total rows.") {
		t.Error("표시 행 수 안내 불일치")
	}
}

func TestPersonaTab(t *testing.T) {
	m := loaded(t, 1000)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.currentTab != TabPersona {
		t.Fatalf("tab = %s, want Persona", m.currentTab)
	}

	view := m.View()
	if !strings.Contains(view, "Persona for Device: a") {
		t.Error("선택된 디바이스가 표시되지 않음")
	}
	if !strings.Contains(view, "Cafe Persona - Cluster 0") {
		t.Error("cafe 페르소나가 표시되지 않음")
	}
}

func TestLoadError(t *testing.T) {
	m := NewModel("missing.csv", func() ([]richness.Record, error) {
		return nil, errors.New("boom")
	}, nil, 0)
	next, _ := m.Update(m.loadData())
	m = next.(Model)

	if !strings.Contains(m.View(), "boom") {
		t.Error("에러가 표시되지 않음")
	}
}
