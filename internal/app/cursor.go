package app

// cursorUV maps a screen pixel inside a square view of side view pixels to
// normalized map coordinates, v growing upwards. It reports false outside
// the view.
func cursorUV(mx, my, view int) (u, v float64, ok bool) {
	if view <= 0 || mx < 0 || my < 0 || mx >= view || my >= view {
		return 0, 0, false
	}
	u = (float64(mx) + 0.5) / float64(view)
	v = 1 - (float64(my)+0.5)/float64(view)
	return u, v, true
}
