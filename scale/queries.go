package scale

// Width thresholds of the Is* classification queries. They are kept apart from
// the breakpoint table (0/600/960/1280/1920), which only drives base sizes and
// smart references.
const (
	PhoneMinWidth   = 360
	TabletMinWidth  = 600
	LargeMinWidth   = 1024
	XLargeMinWidth  = 1280
	XXLargeMinWidth = 1920
)

func (s *Snapshot) widthIn(lo, hi float64) bool {
	return s.viewport.Width >= lo && s.viewport.Width < hi
}

// IsPhone reports a width in [360, 600).
func (s *Snapshot) IsPhone() bool { return s.widthIn(PhoneMinWidth, TabletMinWidth) }

// IsTablet reports a width in [600, 1024).
func (s *Snapshot) IsTablet() bool { return s.widthIn(TabletMinWidth, LargeMinWidth) }

// IsLarge reports a width in [1024, 1280).
func (s *Snapshot) IsLarge() bool { return s.widthIn(LargeMinWidth, XLargeMinWidth) }

// IsXLarge reports a width in [1280, 1920).
func (s *Snapshot) IsXLarge() bool { return s.widthIn(XLargeMinWidth, XXLargeMinWidth) }

// IsPhoneOrLarger reports a width of at least 360.
func (s *Snapshot) IsPhoneOrLarger() bool { return s.viewport.Width >= PhoneMinWidth }

// IsTabletOrLarger reports a width of at least 600.
func (s *Snapshot) IsTabletOrLarger() bool { return s.viewport.Width >= TabletMinWidth }

// IsLargeOrLarger reports a width of at least 1024.
func (s *Snapshot) IsLargeOrLarger() bool { return s.viewport.Width >= LargeMinWidth }

// IsXLargeOrLarger reports a width of at least 1280.
func (s *Snapshot) IsXLargeOrLarger() bool { return s.viewport.Width >= XLargeMinWidth }

// IsXXLargeOrLarger reports a width of at least 1920.
func (s *Snapshot) IsXXLargeOrLarger() bool { return s.viewport.Width >= XXLargeMinWidth }

// IsPortrait holds for square viewports too.
func (s *Snapshot) IsPortrait() bool { return s.viewport.Height >= s.viewport.Width }

// IsLandscape reports width > height.
func (s *Snapshot) IsLandscape() bool { return s.viewport.Width > s.viewport.Height }
