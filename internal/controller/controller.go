// Package controller coordinates the profile store, hardware access and
// the background daemons behind a single façade used by the command
// layer.
package controller

import (
	"time"

	"codeberg.org/mutker/tuxedoctl/internal/daemon"
	"codeberg.org/mutker/tuxedoctl/internal/hwctl"
	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"codeberg.org/mutker/tuxedoctl/internal/profile"
	"codeberg.org/mutker/tuxedoctl/internal/sensors"
	"codeberg.org/mutker/tuxedoctl/internal/telemetry"
)

type Controller struct {
	store   *profile.Store
	hw      *hwctl.Controller
	monitor *sensors.Monitor
	fans    *daemon.FanDaemon
	apps    *daemon.AppMonitor
}

func New(store *profile.Store, hw *hwctl.Controller, monitor *sensors.Monitor,
	collector telemetry.Collector, fanInterval, scanInterval time.Duration,
) *Controller {
	c := &Controller{
		store:   store,
		hw:      hw,
		monitor: monitor,
		fans:    daemon.NewFanDaemon(monitor, hw, collector, fanInterval),
	}
	c.apps = daemon.NewAppMonitor(store, c.applyIndex, scanInterval)

	return c
}

// Apply activates the profile at index: persists the selection, pushes
// the settings to hardware and hands the new curves to the fan daemon.
func (c *Controller) Apply(index int) (hwctl.ApplyReport, error) {
	if err := c.store.SetActive(index); err != nil {
		return hwctl.ApplyReport{}, err
	}

	p := c.store.Active()
	report := c.hw.ApplyProfile(p)
	c.fans.UpdateProfile(p)

	return report, nil
}

// ApplyByName resolves a profile by name and applies it.
func (c *Controller) ApplyByName(name string) (hwctl.ApplyReport, error) {
	index, err := c.store.IndexOf(name)
	if err != nil {
		return hwctl.ApplyReport{}, err
	}

	return c.Apply(index)
}

func (c *Controller) applyIndex(index int) error {
	_, err := c.Apply(index)
	return err
}

// ReapplyActive pushes the active profile to hardware again, for use
// after resume or startup.
func (c *Controller) ReapplyActive() hwctl.ApplyReport {
	p := c.store.Active()
	report := c.hw.ApplyProfile(p)
	c.fans.UpdateProfile(p)

	return report
}

func (c *Controller) Add(p profile.Profile) error {
	return c.store.Add(p)
}

// Update replaces the profile at index. When the active profile is
// edited, the changes are applied immediately.
func (c *Controller) Update(index int, p profile.Profile) error {
	if err := c.store.Update(index, p); err != nil {
		return err
	}

	if index == c.store.ActiveIndex() {
		report := c.hw.ApplyProfile(c.store.Active())
		c.fans.UpdateProfile(c.store.Active())
		if !report.OK() {
			logger.Warn().Int("failures", len(report.Failed())).Msg("Updated profile applied with failures")
		}
	}

	return nil
}

// Delete removes the profile at index. When the active profile is
// deleted, the store falls back to the default profile, which is then
// applied.
func (c *Controller) Delete(index int) error {
	wasActive := index == c.store.ActiveIndex()

	if err := c.store.Delete(index); err != nil {
		return err
	}

	if wasActive {
		c.hw.ApplyProfile(c.store.Active())
		c.fans.UpdateProfile(c.store.Active())
	}

	return nil
}

func (c *Controller) Active() profile.Profile {
	return c.store.Active()
}

func (c *Controller) Profiles() []profile.Profile {
	return c.store.Profiles()
}

// Stats returns a current hardware snapshot.
func (c *Controller) Stats() (sensors.SystemStats, error) {
	return c.monitor.SystemStats()
}

func (c *Controller) StartFanControl() {
	c.fans.Start(c.store.Active())
}

func (c *Controller) StopFanControl() {
	c.fans.Stop()
}

func (c *Controller) StartAppMonitoring() {
	c.apps.Start()
}

func (c *Controller) StopAppMonitoring() {
	c.apps.Stop()
}

// Shutdown stops both daemons.
func (c *Controller) Shutdown() {
	c.apps.Stop()
	c.fans.Stop()
}
