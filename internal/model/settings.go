package model

type CopyFormat string

const (
	CopyFormatText CopyFormat = "text"
	CopyFormatHTML CopyFormat = "html"
)

func (f CopyFormat) IsValid() bool {
	return f == CopyFormatText || f == CopyFormatHTML
}

// StatusColors maps each task status to a CSS color used by task exports.
type StatusColors map[Status]string

type AppSettings struct {
	CopyFormat   CopyFormat
	StatusColors StatusColors
}

// DefaultStatusColors returns red, blue and green for pending, in progress
// and done.
func DefaultStatusColors() StatusColors {
	return StatusColors{
		StatusPending:    "#ef4444",
		StatusInProgress: "#3b82f6",
		StatusDone:       "#22c55e",
	}
}

func DefaultSettings() AppSettings {
	return AppSettings{
		CopyFormat:   CopyFormatText,
		StatusColors: DefaultStatusColors(),
	}
}

func (s AppSettings) Clone() AppSettings {
	colors := make(StatusColors, len(s.StatusColors))
	for k, v := range s.StatusColors {
		colors[k] = v
	}
	s.StatusColors = colors
	return s
}

type PopoutPosition string

const (
	PopoutCenter      PopoutPosition = "center"
	PopoutTopLeft     PopoutPosition = "top-left"
	PopoutTopRight    PopoutPosition = "top-right"
	PopoutBottomLeft  PopoutPosition = "bottom-left"
	PopoutBottomRight PopoutPosition = "bottom-right"

	DefaultPopoutPosition = PopoutCenter
)

func PopoutPositions() []PopoutPosition {
	return []PopoutPosition{PopoutCenter, PopoutTopLeft, PopoutTopRight, PopoutBottomLeft, PopoutBottomRight}
}

func (p PopoutPosition) IsValid() bool {
	switch p {
	case PopoutCenter, PopoutTopLeft, PopoutTopRight, PopoutBottomLeft, PopoutBottomRight:
		return true
	}
	return false
}

// Placement returns the top-left corner of a width x height window placed
// on a screenW x screenH screen. Corners are flush with the screen edges;
// anything else is centered.
func (p PopoutPosition) Placement(screenW, screenH, width, height int) (top, left int) {
	top = (screenH - height) / 2
	left = (screenW - width) / 2
	switch p {
	case PopoutTopLeft:
		top, left = 0, 0
	case PopoutTopRight:
		top, left = 0, screenW-width
	case PopoutBottomLeft:
		top, left = screenH-height, 0
	case PopoutBottomRight:
		top, left = screenH-height, screenW-width
	}
	return top, left
}
