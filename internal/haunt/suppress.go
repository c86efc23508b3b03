package haunt

import (
	"github.com/hauntess/server/internal/host"
	"github.com/hauntess/server/internal/schema"
)

var glowingOffset = schema.MustOffset(schema.ClassGlowProperty, schema.FieldGlowing)

// Suppress hides the pawn's overhead identification and glow outline.
// Fields are only written, and marked, when they differ.
func Suppress(p host.Pawn) error {
	flags, err := p.Flags()
	if err != nil {
		return err
	}
	if flags&schema.FlagNoTarget == 0 {
		if err := p.SetFlags(flags | schema.FlagNoTarget); err != nil {
			return err
		}
		if err := p.SetStateChanged(schema.ClassBaseEntity, schema.FieldFlags, 0); err != nil {
			return err
		}
	}
	return setGlowing(p, false)
}

// Unsuppress undoes Suppress.
func Unsuppress(p host.Pawn) error {
	flags, err := p.Flags()
	if err != nil {
		return err
	}
	if flags&schema.FlagNoTarget != 0 {
		if err := p.SetFlags(flags &^ schema.FlagNoTarget); err != nil {
			return err
		}
		if err := p.SetStateChanged(schema.ClassBaseEntity, schema.FieldFlags, 0); err != nil {
			return err
		}
	}
	return setGlowing(p, true)
}

// Suppressed reports whether Suppress is in effect on p.
func Suppressed(p host.Pawn) bool {
	flags, err := p.Flags()
	if err != nil {
		return false
	}
	glowing, err := p.Glowing()
	if err != nil {
		return false
	}
	return flags&schema.FlagNoTarget != 0 && !glowing
}

func setGlowing(p host.Pawn, on bool) error {
	glowing, err := p.Glowing()
	if err != nil {
		return err
	}
	if glowing == on {
		return nil
	}
	if err := p.SetGlowing(on); err != nil {
		return err
	}
	return p.SetStateChanged(schema.ClassBaseModelEntity, schema.FieldGlow, glowingOffset)
}
