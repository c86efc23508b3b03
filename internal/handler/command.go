package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hauntess/server/internal/haunt"
	"github.com/hauntess/server/internal/host"
	"go.uber.org/zap"
)

// HandleCommand runs one operator console line. Returns false for blank
// input, true once the line has been consumed.
func HandleCommand(out Feedback, line string, deps *Deps) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	cmd := strings.ToLower(strings.TrimPrefix(parts[0], "!"))
	args := parts[1:]

	deps.Log.Debug("console command", zap.String("cmd", cmd), zap.Strings("args", args))

	switch cmd {
	case "help":
		cmdHelp(out)
	case "css_haunt", "haunt":
		cmdHaunt(out, deps)
	case "css_unhaunt", "unhaunt":
		cmdUnhaunt(out, deps)
	case "haunt_status", "status":
		cmdStatus(out, deps)
	case "changelevel", "map":
		cmdChangeLevel(out, args, deps)
	case "maps":
		cmdMaps(out, deps)
	case "connect":
		cmdConnect(out, args, deps)
	case "disconnect", "kick":
		cmdDisconnect(out, args, deps)
	case "spawn":
		cmdSlot(out, args, "spawn", deps.Host.Spawn)
	case "kill":
		cmdSlot(out, args, "kill", deps.Host.Kill)
	case "stomp":
		cmdSlot(out, args, "stomp", deps.Host.Stomp)
	case "players", "who":
		cmdPlayers(out, deps)
	case "exec":
		cmdExec(out, args, deps)
	default:
		out.Reply("unknown command: %s  (type help for a list)", cmd)
	}
	return true
}

func cmdHelp(out Feedback) {
	out.Send("commands:")
	out.Send("  css_haunt | haunt              enable the haunted atmosphere")
	out.Send("  css_unhaunt | unhaunt          restore the normal atmosphere")
	out.Send("  haunt_status                   show mode, master fog and last pass")
	out.Send("  changelevel <map>              reload content (maps lists them)")
	out.Send("  connect <name> [bot]           add a player session")
	out.Send("  disconnect <slot>              remove a player session")
	out.Send("  spawn | kill | stomp <slot>    respawn, kill or reset a player's pawn")
	out.Send("  players                        list player sessions")
	out.Send("  exec <server command>          run a raw server command")
}

func cmdHaunt(out Feedback, deps *Deps) {
	if err := deps.Controller.Activate(); err != nil {
		out.Reply("haunt failed: %v", err)
		return
	}
	out.Send("haunted atmosphere enabled")
}

func cmdUnhaunt(out Feedback, deps *Deps) {
	deps.Controller.Deactivate()
	out.Send("haunted atmosphere disabled")
}

func cmdStatus(out Feedback, deps *Deps) {
	s := deps.Controller.Status()
	out.Reply("mode=%s  map=%s  generation=%d", s.Mode, s.Map, s.Generation)
	if s.MasterCached {
		out.Reply("master=%s  handle=%d  valid=%t", deps.Controller.Registry().Name(), s.MasterHandle, s.MasterValid)
	} else {
		out.Reply("master=%s  (not cached)", deps.Controller.Registry().Name())
	}
	out.Reply("activations=%d  reapply_pending=%t  passes=%d", s.Activations, s.ReapplyPending, s.Passes)
	out.Reply("last pass: visited=%d bound=%d synced=%d faults=%d",
		s.LastPass.Visited, s.LastPass.Bound, s.LastPass.Synced, s.LastPass.Faults)
}

func cmdChangeLevel(out Feedback, args []string, deps *Deps) {
	if len(args) < 1 {
		out.Send("usage: changelevel <map>")
		return
	}
	if err := deps.Host.LoadMap(args[0]); err != nil {
		out.Reply("changelevel failed: %v", err)
		return
	}
	out.Reply("loaded %s (generation %d)", deps.Host.MapName(), deps.Host.Generation())
}

func cmdMaps(out Feedback, deps *Deps) {
	current := deps.Host.MapName()
	for _, name := range deps.Content.Names() {
		marker := " "
		if name == current {
			marker = "*"
		}
		m := deps.Content.Get(name)
		out.Reply("%s %s  (%d entities)", marker, name, len(m.Entities))
	}
}

func cmdConnect(out Feedback, args []string, deps *Deps) {
	if len(args) < 1 {
		out.Send("usage: connect <name> [bot]")
		return
	}
	bot := len(args) > 1 && strings.EqualFold(args[1], "bot")
	slot, err := deps.Host.Connect(args[0], bot)
	if err != nil {
		out.Reply("connect failed: %v", err)
		return
	}
	if err := deps.Host.Spawn(slot); err != nil {
		out.Reply("connected %s in slot %d, spawn failed: %v", args[0], slot, err)
		return
	}
	out.Reply("connected %s in slot %d", args[0], slot)
}

func cmdDisconnect(out Feedback, args []string, deps *Deps) {
	slot, ok := parseSlot(out, args, "disconnect")
	if !ok {
		return
	}
	if err := deps.Host.Disconnect(slot); err != nil {
		out.Reply("disconnect failed: %v", err)
		return
	}
	out.Reply("slot %d disconnected", slot)
}

func cmdSlot(out Feedback, args []string, name string, fn func(int) error) {
	slot, ok := parseSlot(out, args, name)
	if !ok {
		return
	}
	if err := fn(slot); err != nil {
		out.Reply("%s failed: %v", name, err)
		return
	}
	out.Reply("%s slot %d", name, slot)
}

func cmdPlayers(out Feedback, deps *Deps) {
	master := deps.Controller.Registry().Cached()
	n := 0
	deps.Host.EachPlayer(func(p host.Player) {
		n++
		out.Send(describePlayer(p, master))
	})
	if n == 0 {
		out.Send("no players")
	}
}

func describePlayer(p host.Player, master host.FogController) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%2d  %-16s", p.Slot(), p.PlayerName())
	if p.IsBot() {
		b.WriteString(" bot")
	}
	pw := p.Pawn()
	if pw == nil || !pw.IsValid() {
		b.WriteString("  (no pawn)")
		return b.String()
	}
	fc := pw.FogController()
	bound := master != nil && fc != nil && fc.Handle() == master.Handle()
	fmt.Fprintf(&b, "  pawn=%d  bound=%t  suppressed=%t", pw.Handle(), bound, haunt.Suppressed(pw))
	return b.String()
}

func cmdExec(out Feedback, args []string, deps *Deps) {
	if len(args) == 0 {
		out.Send("usage: exec <server command>")
		return
	}
	cmd := strings.Join(args, " ")
	deps.Host.ExecuteCommand(cmd)
	out.Reply("executed: %s", cmd)
}

func parseSlot(out Feedback, args []string, name string) (int, bool) {
	if len(args) < 1 {
		out.Reply("usage: %s <slot>", name)
		return 0, false
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		out.Reply("invalid slot: %s", args[0])
		return 0, false
	}
	return slot, true
}
