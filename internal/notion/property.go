package notion

import (
	"strconv"
	"strings"
)

// RichText is a single fragment of a title or rich_text property.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// Formula is the resolved value of a formula property.
type Formula struct {
	Type   string   `json:"type"`
	Number *float64 `json:"number"`
}

// Rollup is the resolved value of a rollup property.
type Rollup struct {
	Type   string   `json:"type"`
	Number *float64 `json:"number"`
}

// Date is the value of a date property.
type Date struct {
	Start string `json:"start"`
}

// Select is the value of a select property.
type Select struct {
	Name string `json:"name"`
}

// Property is the typed wrapper the store uses for every database value.
// The Type discriminator decides which of the other fields is populated.
type Property struct {
	Type     string     `json:"type"`
	Number   *float64   `json:"number,omitempty"`
	Formula  *Formula   `json:"formula,omitempty"`
	Rollup   *Rollup    `json:"rollup,omitempty"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Date     *Date      `json:"date,omitempty"`
	Select   *Select    `json:"select,omitempty"`
}

// NumberValue extracts the numeric value of a property. Plain numbers,
// number-typed formula results and number-typed rollups all resolve to the
// same value; anything else reports no value, which is distinct from zero.
func (p Property) NumberValue() (float64, bool) {
	switch p.Type {
	case "number":
		if p.Number != nil {
			return *p.Number, true
		}
	case "formula":
		if p.Formula != nil && p.Formula.Type == "number" && p.Formula.Number != nil {
			return *p.Formula.Number, true
		}
	case "rollup":
		if p.Rollup != nil && p.Rollup.Type == "number" && p.Rollup.Number != nil {
			return *p.Rollup.Number, true
		}
	}
	return 0, false
}

// TextValue extracts the plain text of a title or rich_text property.
// Numbers are rendered for convenience; other types yield "".
func (p Property) TextValue() string {
	switch p.Type {
	case "rich_text":
		return joinPlainText(p.RichText)
	case "title":
		return joinPlainText(p.Title)
	case "number":
		if p.Number != nil {
			return strconv.FormatFloat(*p.Number, 'f', -1, 64)
		}
	}
	return ""
}

// DateValue extracts the start date of a date property.
func (p Property) DateValue() (string, bool) {
	if p.Type == "date" && p.Date != nil && p.Date.Start != "" {
		return p.Date.Start, true
	}
	return "", false
}

// SelectValue extracts the selected option name of a select property.
func (p Property) SelectValue() (string, bool) {
	if p.Type == "select" && p.Select != nil {
		return p.Select.Name, true
	}
	return "", false
}

func joinPlainText(fragments []RichText) string {
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.PlainText)
	}
	return strings.TrimSpace(b.String())
}

// TitleProperty builds the payload for writing a title value.
func TitleProperty(text string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

// NumberProperty builds the payload for writing a number value.
func NumberProperty(value float64) map[string]any {
	return map[string]any{"number": value}
}

// TitleEqualsFilter builds a query filter matching a title property exactly.
func TitleEqualsFilter(property, value string) map[string]any {
	return map[string]any{
		"property": property,
		"title":    map[string]any{"equals": value},
	}
}
