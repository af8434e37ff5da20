package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Stage is one named step of a job's hiring pipeline. Stages are value
// objects stored as an ordered JSON array on the owning job, not rows of
// their own.
type Stage struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

const (
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorPurple = "purple"
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorPink   = "pink"
	ColorGray   = "gray"
)

var StageColors = []string{
	ColorBlue, ColorGreen, ColorYellow, ColorPurple,
	ColorRed, ColorOrange, ColorPink, ColorGray,
}

var ErrStageNotFound = errors.New("stage not found")

// DefaultStages is the fallback pipeline used when a job defines no
// stage list of its own.
func DefaultStages() StageList {
	return StageList{
		{ID: "applied", Label: "Applied", Color: ColorBlue},
		{ID: "screening", Label: "Screening", Color: ColorYellow},
		{ID: "interview", Label: "Interview", Color: ColorPurple},
		{ID: "offer", Label: "Offer", Color: ColorGreen},
		{ID: "rejected", Label: "Rejected", Color: ColorRed},
	}
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)

// SlugifyStageLabel derives a stage id from a user-entered label.
func SlugifyStageLabel(label string) string {
	slug := strings.ToLower(strings.TrimSpace(label))
	slug = strings.Join(strings.Fields(slug), "-")
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	return strings.Trim(slug, "-")
}

type StageList []Stage

// Value serializes the list into the job's JSON column.
func (l StageList) Value() (driver.Value, error) {
	if l == nil {
		l = StageList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(err, "marshal stage list")
	}
	return string(data), nil
}

func (l *StageList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported stage list column type %T", value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, l), "unmarshal stage list")
}

func (l StageList) ByID(id string) (Stage, bool) {
	return lo.Find(l, func(s Stage) bool { return s.ID == id })
}

func (l StageList) IDs() []string {
	return lo.Map(l, func(s Stage, _ int) string { return s.ID })
}

// Add appends a stage derived from label. Ids must stay unique within a
// job, so a colliding slug gets a numeric suffix.
func (l StageList) Add(label string) (StageList, error) {
	return l.AddWithColor(label, ColorGray)
}

func (l StageList) AddWithColor(label, color string) (StageList, error) {
	slug := SlugifyStageLabel(label)
	if slug == "" {
		return l, errors.New("stage label produces an empty id")
	}

	id := slug
	for i := 2; ; i++ {
		if _, exists := l.ByID(id); !exists {
			break
		}
		id = fmt.Sprintf("%s-%d", slug, i)
	}

	return append(l, Stage{ID: id, Label: strings.TrimSpace(label), Color: color}), nil
}

func (l StageList) Remove(index int) (StageList, error) {
	if index < 0 || index >= len(l) {
		return l, errors.Errorf("stage index %d out of range", index)
	}
	out := make(StageList, 0, len(l)-1)
	out = append(out, l[:index]...)
	return append(out, l[index+1:]...), nil
}

func (l StageList) Relabel(index int, label string) (StageList, error) {
	if index < 0 || index >= len(l) {
		return l, errors.Errorf("stage index %d out of range", index)
	}
	// The id stays stable so existing candidates keep their reference.
	out := append(StageList{}, l...)
	out[index].Label = strings.TrimSpace(label)
	return out, nil
}

func (l StageList) Recolor(index int, color string) (StageList, error) {
	if index < 0 || index >= len(l) {
		return l, errors.Errorf("stage index %d out of range", index)
	}
	if !lo.Contains(StageColors, color) {
		return l, errors.Errorf("unknown stage color %q", color)
	}
	out := append(StageList{}, l...)
	out[index].Color = color
	return out, nil
}
