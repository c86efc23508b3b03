// Package schema describes the host's networked field layout and the
// dirty-marking rules for the fog structures this server writes.
package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a class or field has no known offset.
var ErrUnknownField = errors.New("schema: unknown field")

// Class and field names as the host's schema system spells them.
const (
	ClassBaseEntity       = "CBaseEntity"
	ClassBaseModelEntity  = "CBaseModelEntity"
	ClassBasePlayerPawn   = "CBasePlayerPawn"
	ClassFogController    = "CFogController"
	ClassPlayerVisibility = "CPlayerVisibility"
	ClassGlowProperty     = "CGlowProperty"
	ClassSky3dParams      = "sky3dparams_t"
	ClassFogParams        = "fogparams_t"

	FieldFlags                   = "m_fFlags"
	FieldGlow                    = "m_Glow"
	FieldGlowing                 = "m_bGlowing"
	FieldSkybox3d                = "m_skybox3d"
	FieldSkyFog                  = "fog"
	FieldFog                     = "m_fog"
	FieldFogMaxDensityMultiplier = "m_flFogMaxDensityMultiplier"
)

// Designer names of the entities this server touches.
const (
	DesignerFogController    = "env_fog_controller"
	DesignerGradientFog      = "env_gradient_fog"
	DesignerCubemapFog       = "env_cubemap_fog"
	DesignerPostProcessing   = "post_processing_volume"
	DesignerPlayerVisibility = "env_player_visibility"
	DesignerPlayerPawn       = "player"
	DesignerLightEnvironment = "light_environment"
	DesignerSkyLight         = "env_sky_light"
	DesignerHudHint          = "env_hudhint"
)

// FlagNoTarget hides a pawn from targeting and overhead identification.
const FlagNoTarget uint32 = 1 << 11

var offsets = map[string]map[string]int{
	ClassBaseEntity: {
		FieldFlags: 0x3f8,
	},
	ClassBaseModelEntity: {
		FieldGlow: 0xc00,
	},
	ClassGlowProperty: {
		FieldGlowing: 0x51,
	},
	ClassBasePlayerPawn: {
		FieldSkybox3d: 0x9a0,
	},
	ClassSky3dParams: {
		FieldSkyFog: 0x28,
	},
	ClassFogController: {
		FieldFog: 0x4b0,
	},
	ClassPlayerVisibility: {
		FieldFogMaxDensityMultiplier: 0x4c0,
	},
	ClassFogParams: {
		"colorPrimary": 0x08,
		"start":        0x14,
		"end":          0x18,
		"maxdensity":   0x24,
		"exponent":     0x28,
		"enable":       0x64,
	},
}

// Offset returns the byte offset of field within class.
func Offset(class, field string) (int, error) {
	fields, ok := offsets[class]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownField, class)
	}
	off, ok := fields[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrUnknownField, class, field)
	}
	return off, nil
}

// MustOffset is Offset for names known at compile time.
func MustOffset(class, field string) int {
	off, err := Offset(class, field)
	if err != nil {
		panic(err)
	}
	return off
}
