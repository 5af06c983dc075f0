package tui

// columnLayout holds calculated column widths for the View
type columnLayout struct {
	listWidth      int
	inspectorWidth int // 0 if not shown
}

// calculateColumnLayout splits the width between the list and the inspector
func (m Model) calculateColumnLayout(availableWidth int) columnLayout {
	if !m.ShowInspector || availableWidth < MinSplitWidth {
		return columnLayout{listWidth: availableWidth}
	}
	inspector := max(availableWidth*InspectorColumnPercent/100, MinInspectorWidth)
	return columnLayout{
		listWidth:      availableWidth - inspector,
		inspectorWidth: inspector,
	}
}

// contentHeight is the height left for the list and inspector
func (m Model) contentHeight() int {
	return max(m.Height-HeaderHeight-FooterHeight, 1)
}

// listHeight is the number of game rows that fit on screen
func (m Model) listHeight() int {
	if !m.Ready {
		return 20
	}
	return m.contentHeight()
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	layout := m.calculateColumnLayout(m.Width)
	if layout.inspectorWidth > 0 {
		m.Inspector.SetSize(layout.inspectorWidth, m.contentHeight())
	}
	m.clampOffset()
}
