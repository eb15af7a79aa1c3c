package views

// ViewState contains common state shared by view models.
// Embed this struct in view models to get width/height handling.
type ViewState struct {
	Width  int
	Height int
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}
