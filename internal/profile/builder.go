package profile

// Builder constructs profiles fluently, starting from the default settings
type Builder struct {
	profile Profile
}

func NewBuilder(name string) *Builder {
	p := Default()
	p.Name = name
	p.IsDefault = false

	return &Builder{profile: p}
}

func (b *Builder) KeyboardColor(r, g, bl uint8) *Builder {
	b.profile.KeyboardBacklight.Color = RGBColor{R: r, G: g, B: bl}
	return b
}

func (b *Builder) KeyboardBrightness(brightness int) *Builder {
	b.profile.KeyboardBacklight.Brightness = brightness
	return b
}

func (b *Builder) CPUPerformance(p PerformanceProfile) *Builder {
	b.profile.CPUSettings.PerformanceProfile = p
	return b
}

func (b *Builder) CPUFrequencyLimits(minMHz, maxMHz *uint) *Builder {
	b.profile.CPUSettings.MinFreqMHz = minMHz
	b.profile.CPUSettings.MaxFreqMHz = maxMHz
	return b
}

func (b *Builder) DisableBoost(disable bool) *Builder {
	b.profile.CPUSettings.DisableBoost = disable
	return b
}

func (b *Builder) SMTEnabled(enabled bool) *Builder {
	b.profile.CPUSettings.SMTEnabled = enabled
	return b
}

func (b *Builder) ScreenBrightness(brightness int) *Builder {
	b.profile.ScreenSettings.Brightness = brightness
	return b
}

func (b *Builder) FanCurve(fanID string, curve FanCurve) *Builder {
	b.profile.FanCurves[fanID] = curve
	return b
}

// AutoSwitchForApps enables auto-switching with the given trigger substrings
func (b *Builder) AutoSwitchForApps(apps ...string) *Builder {
	b.profile.AutoSwitchEnabled = true
	b.profile.TriggerApps = apps
	return b
}

func (b *Builder) Build() Profile {
	return b.profile
}
