package encoding

import (
	"fmt"
	"sort"

	"github.com/blead/canvasfit/pkg/canvas"
	omap "github.com/iancoleman/orderedmap"
	"github.com/tinylib/msgp/msgp"
)

// Result is the canvas computed for one source rectangle.
type Result struct {
	Source string
	Width  float64
	Height float64
	Canvas canvas.Dimensions
}

// ReportFormat selects the serialization of a report.
type ReportFormat int

// Enum values for ReportFormat.
const (
	ReportJSON ReportFormat = iota
	ReportMsgpack
)

// ParseReportFormat maps a format name to a ReportFormat.
func ParseReportFormat(name string) (ReportFormat, error) {
	switch name {
	case "json", "":
		return ReportJSON, nil
	case "msgpack", "msgp":
		return ReportMsgpack, nil
	}
	return ReportJSON, fmt.Errorf("ParseReportFormat: unknown format, name=%s", name)
}

// SortResults orders results by source.
func SortResults(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Source < results[j].Source
	})
}

// MarshalReport serializes results in the given format.
// indent only applies to JSON.
func MarshalReport(results []*Result, format ReportFormat, indent int) ([]byte, error) {
	switch format {
	case ReportMsgpack:
		return MarshalMsgpack(results), nil
	default:
		return MarshalJSON(results, indent)
	}
}

// MarshalJSON serializes results as a JSON array with stable key order.
func MarshalJSON(results []*Result, indent int) ([]byte, error) {
	rows := make([]*omap.OrderedMap, 0, len(results))
	for _, r := range results {
		c := omap.New()
		c.SetEscapeHTML(false)
		c.Set("width", r.Canvas.Width)
		c.Set("height", r.Canvas.Height)

		row := omap.New()
		row.SetEscapeHTML(false)
		row.Set("source", r.Source)
		row.Set("width", r.Width)
		row.Set("height", r.Height)
		row.Set("canvas", c)
		rows = append(rows, row)
	}

	output, err := jsonMarshalNoEscape(rows)
	if err != nil {
		return nil, err
	}
	return jsonIndent(output, indent)
}

// MarshalMsgpack serializes results as a MessagePack array of maps
// with the same layout as MarshalJSON.
func MarshalMsgpack(results []*Result) []byte {
	b := msgp.AppendArrayHeader(nil, uint32(len(results)))
	for _, r := range results {
		b = msgp.AppendMapHeader(b, 4)
		b = msgp.AppendString(b, "source")
		b = msgp.AppendString(b, r.Source)
		b = msgp.AppendString(b, "width")
		b = msgp.AppendFloat64(b, r.Width)
		b = msgp.AppendString(b, "height")
		b = msgp.AppendFloat64(b, r.Height)
		b = msgp.AppendString(b, "canvas")
		b = msgp.AppendMapHeader(b, 2)
		b = msgp.AppendString(b, "width")
		b = msgp.AppendInt(b, r.Canvas.Width)
		b = msgp.AppendString(b, "height")
		b = msgp.AppendInt(b, r.Canvas.Height)
	}
	return b
}
