package sim

import (
	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/registry"
)

// ResourceInput is the state consumed by TickResources.
type ResourceInput struct {
	Oxygen, OxygenMax         float64
	HeatResist, HeatResistMax float64

	InWater        bool
	HeadUnderWater bool
	Liquid         registry.LiquidType
	DtMs           float64

	Rates config.Resources
}

// ResourceResult holds the updated meters.
type ResourceResult struct {
	Oxygen, OxygenMax         float64
	HeatResist, HeatResistMax float64
}

// TickResources drains or refills oxygen and heat-resist linearly in dt.
// Maxima that are unset or invalid fall back to the configured maxima and
// are then kept. Non-finite meter values reset to their maximum.
func TickResources(in ResourceInput) ResourceResult {
	dt := in.DtMs
	if !core.Finite(dt) || dt < 0 {
		dt = 0
	}
	sec := dt / 1000

	oxyMax := stickyMax(in.OxygenMax, in.Rates.OxygenMax)
	heatMax := stickyMax(in.HeatResistMax, in.Rates.HeatResistMax)

	oxy := in.Oxygen
	if !core.Finite(oxy) {
		oxy = oxyMax
	}
	heat := in.HeatResist
	if !core.Finite(heat) {
		heat = heatMax
	}

	if in.HeadUnderWater && (in.Liquid == registry.LiquidWater || in.InWater) {
		oxy -= in.Rates.OxygenDrainPerSec * sec
	} else {
		oxy += in.Rates.OxygenRefillPerSec * sec
	}

	if in.Liquid == registry.LiquidLava {
		heat -= in.Rates.HeatDrainPerSec * sec
	} else {
		heat += in.Rates.HeatRefillPerSec * sec
	}

	return ResourceResult{
		Oxygen:        core.ClampF(oxy, 0, oxyMax),
		OxygenMax:     oxyMax,
		HeatResist:    core.ClampF(heat, 0, heatMax),
		HeatResistMax: heatMax,
	}
}

func stickyMax(current, fallback float64) float64 {
	if core.Finite(current) && current > 0 {
		return current
	}
	if core.Finite(fallback) && fallback > 0 {
		return fallback
	}
	return 100
}
