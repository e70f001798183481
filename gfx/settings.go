package gfx

type (
	// Profile selects an OpenGL profile, for versions 3.2 and up.
	Profile int

	// Flags are context creation flags.
	Flags uint

	// ContextSettings configures context creation.
	//
	// Only Width and Height are read by the software and terminal backends,
	// via [ContextSettings.Size]. The remaining fields describe a hardware
	// API context (version, profile, framebuffer format, sharing) and are
	// carried unchanged for backends that create one; the software and
	// terminal backends ignore them, as they report a fixed [API].
	ContextSettings struct {
		// Share is a context to share objects with, if any.
		Share Context `toml:"-"`
		// API defaults to [APIOpenGL].
		API API `toml:"api"`
		// Major and Minor are the API version, defaulting to 3.3.
		Major int `toml:"major"`
		Minor int `toml:"minor"`
		// Profile defaults to [ProfileCore].
		Profile Profile `toml:"profile"`
		Flags   Flags   `toml:"flags"`
		// Samples is the multisample count, 0 disabling multisampling.
		Samples     int `toml:"samples"`
		DepthBits   int `toml:"depth_bits"`
		StencilBits int `toml:"stencil_bits"`
		RedBits     int `toml:"red_bits"`
		GreenBits   int `toml:"green_bits"`
		BlueBits    int `toml:"blue_bits"`
		AlphaBits   int `toml:"alpha_bits"`
		// Width and Height are the initial drawable size, in pixels.
		Width  int `toml:"width"`
		Height int `toml:"height"`
		// AutoLoadBindings loads API bindings once the context is created.
		AutoLoadBindings bool `toml:"auto_load_bindings"`
		SRGB             bool `toml:"srgb"`
	}

	// ControlSettings configures how a paced loop presents frames.
	ControlSettings struct {
		// VSync defaults to [VSyncOff].
		VSync VSyncMode `toml:"vsync"`
	}

	// Settings combines context creation settings with the optional
	// presentation settings used by paced loops.
	Settings struct {
		Control *ControlSettings `toml:"control"`
		Context ContextSettings  `toml:"context"`
	}
)

const (
	ProfileAny Profile = iota
	ProfileCore
	ProfileCompatibility
)

const (
	FlagDebug Flags = 1 << iota
	FlagForwardCompatible
	FlagOffscreen
)

// DefaultContextSettings returns OpenGL 3.3 core settings, with 8 bit colour
// channels, a 24 bit depth buffer, an 8 bit stencil buffer, and a 100x100
// drawable.
func DefaultContextSettings() ContextSettings {
	return ContextSettings{
		API:              APIOpenGL,
		Major:            3,
		Minor:            3,
		Profile:          ProfileCore,
		DepthBits:        24,
		StencilBits:      8,
		RedBits:          8,
		GreenBits:        8,
		BlueBits:         8,
		AlphaBits:        8,
		Width:            100,
		Height:           100,
		AutoLoadBindings: true,
	}
}

// DefaultSettings returns [DefaultContextSettings] with default control
// settings.
func DefaultSettings() Settings {
	return Settings{
		Context: DefaultContextSettings(),
		Control: &ControlSettings{},
	}
}

// VSync returns the configured vsync mode, or [VSyncOff] without control
// settings.
func (x Settings) VSync() VSyncMode {
	if x.Control == nil {
		return VSyncOff
	}
	return x.Control.VSync
}

// Size returns the configured drawable size, falling back to the defaults
// for non-positive dimensions.
func (x ContextSettings) Size() (width, height int) {
	width, height = x.Width, x.Height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 100
	}
	return
}

// Clone returns a copy that shares no mutable state with x. The shared
// context, if any, is retained.
func (x Settings) Clone() Settings {
	if x.Control != nil {
		c := *x.Control
		x.Control = &c
	}
	return x
}
