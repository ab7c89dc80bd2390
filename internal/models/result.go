package models

// ResultKind discriminates Result so clients never guess a shape from field presence.
type ResultKind string

const (
	ResultSeries     ResultKind = "series"
	ResultScalar     ResultKind = "scalar"
	ResultDeviceList ResultKind = "device_list"
	ResultEmpty      ResultKind = "empty"
)

// Scalar is a single figure with its unit.
type Scalar struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Result is the envelope returned by aggregation and timeline endpoints.
// Only the field matching Kind is set.
type Result struct {
	Kind    ResultKind      `json:"kind"`
	Summary string          `json:"summary,omitempty"`
	View    View            `json:"view,omitempty"`
	Series  []TimelineEntry `json:"series,omitempty"`
	Scalar  *Scalar         `json:"scalar,omitempty"`
	Devices *CurrentUsage   `json:"devices,omitempty"`
	Detail  any             `json:"detail,omitempty"`
}

// SeriesResult wraps entries, collapsing to ResultEmpty when there are none.
func SeriesResult(summary string, view View, entries []TimelineEntry) Result {
	if len(entries) == 0 {
		return Result{Kind: ResultEmpty, Summary: summary, View: view}
	}
	return Result{Kind: ResultSeries, Summary: summary, View: view, Series: entries}
}

// ScalarResult wraps a single value.
func ScalarResult(summary string, value float64, unit string) Result {
	return Result{Kind: ResultScalar, Summary: summary, Scalar: &Scalar{Value: value, Unit: unit}}
}

// DeviceListResult wraps a usage breakdown, collapsing to ResultEmpty without devices.
func DeviceListResult(summary string, u CurrentUsage) Result {
	if len(u.PerDevice) == 0 {
		return Result{Kind: ResultEmpty, Summary: summary}
	}
	return Result{Kind: ResultDeviceList, Summary: summary, Devices: &u}
}
