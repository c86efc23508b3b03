package haunt

import "github.com/hauntess/server/internal/schema"

// competingDesigners are map entities that set atmosphere on their own and
// would fight the master controller.
var competingDesigners = []string{
	schema.DesignerGradientFog,
	schema.DesignerCubemapFog,
	schema.DesignerPostProcessing,
}

// ActivateCommands are the server commands issued on activation.
// Every cvar here has its stock value restored by RestoreCommands.
var ActivateCommands = []string{
	"ent_fire " + schema.DesignerLightEnvironment + " Disable",
	"ent_fire " + schema.DesignerSkyLight + " Disable",
	"ent_fire " + schema.DesignerFogController + " TurnOff",
	"sv_footsteps 0",
	"mp_friendlyfire 1",
	"ff_damage_reduction_bullets 1.0",
	"ff_damage_reduction_grenade 1.0",
	"ff_damage_reduction_grenade_self 1.0",
	"ff_damage_reduction_other 1.0",
	"mp_autokick 0",
	"mp_td_dmgtokick 999999",
	"mp_td_dmgtowarn 999999",
	"mp_td_spawndmgthreshold 999999",
	"sv_show_team_equipment_force_on 0",
	"sv_show_team_equipment 0",
	"ent_fire " + schema.DesignerHudHint + " Disable",
}

// RestoreCommands put every parameter ActivateCommands touched back to the
// host's stock value.
var RestoreCommands = []string{
	"ent_fire " + schema.DesignerLightEnvironment + " Enable",
	"ent_fire " + schema.DesignerSkyLight + " Enable",
	"ent_fire " + schema.DesignerHudHint + " Enable",
	"sv_footsteps 1",
	"sv_show_team_equipment 1",
	"sv_show_team_equipment_force_on 0",
	"mp_friendlyfire 0",
	"mp_autokick 1",
	"mp_td_dmgtokick 300",
	"mp_td_dmgtowarn 200",
	"mp_td_spawndmgthreshold 50",
	"ff_damage_reduction_bullets 0.33",
	"ff_damage_reduction_grenade 0.85",
	"ff_damage_reduction_grenade_self 1",
	"ff_damage_reduction_other 0.4",
}

// Client commands sent to each session.
const (
	glowOffCommand = "cl_glow_brightness 0.0"
	glowOnCommand  = "cl_glow_brightness 1.0"
)

// Operator-facing chat lines. \x01-\x10 are host colour codes.
const (
	chatActivated   = " \x07[Hauntess] \x01Darkness falls. \x02Friendly fire is live, footsteps are silent, teammate tags are hidden."
	chatDeactivated = " \x06[Hauntess] \x01The lights are back. Friendly fire off, footsteps restored."
	chatNoMaster    = " \x02[Hauntess] \x01ERROR: could not create the fog controller."
)
