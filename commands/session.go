package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"MudraBuilder/internal/console"
	"MudraBuilder/internal/mapserver"
)

var Help = Define(Definition{
	Name:        "help",
	Aliases:     []string{"?"},
	Usage:       "help [command]",
	Description: "list commands or explain one",
}, func(ctx *Context) bool {
	if ctx.Arg != "" {
		cmd, ok := Find(ctx.Arg)
		if !ok {
			ctx.Warn("No command named %q.", ctx.Arg)
			return false
		}
		ctx.Designer.Send(commandHelp(cmd))
		return false
	}
	var b strings.Builder
	for _, group := range groupOrder {
		if group == GroupAdmin && !ctx.Designer.Admin {
			continue
		}
		cmds := commandsForGroup(group)
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(helpMessage(string(group)+":", cmds))
	}
	b.WriteString("\r\nCoordinates are grid cells; north is +y. Modifiers: +ctrl, +shift.")
	ctx.Designer.Send(b.String())
	return false
})

func helpMessage(title string, commands []*Command) string {
	var b strings.Builder
	b.WriteString(console.Style("\r\n"+title+"\r\n", console.AnsiBold, console.AnsiUnderline))
	for _, cmd := range commands {
		usage := cmd.Usage
		if strings.TrimSpace(usage) == "" {
			usage = cmd.Name
		}
		b.WriteString(fmt.Sprintf("  %-34s - %s\r\n", usage, cmd.Description))
	}
	return b.String()
}

func commandHelp(cmd *Command) string {
	var b strings.Builder
	b.WriteString("\r\n" + console.Style(cmd.Usage, console.AnsiBold))
	b.WriteString("\r\n  " + cmd.Description)
	if len(cmd.Aliases) > 0 {
		b.WriteString("\r\n  aliases: " + strings.Join(cmd.Aliases, ", "))
	}
	return b.String()
}

func commandsForGroup(group CommandGroup) []*Command {
	all := All()
	filtered := make([]*Command, 0, len(all))
	for _, cmd := range all {
		if cmd.Group == group {
			filtered = append(filtered, cmd)
		}
	}
	return filtered
}

var Reload = Define(Definition{
	Name:        "reload",
	Aliases:     []string{"refresh"},
	Usage:       "reload",
	Description: "fetch the latest rooms and areas from the server",
}, func(ctx *Context) bool {
	if err := ctx.Editor().Load(ctx.Ctx); err == nil {
		ctx.Reply("Loaded %d room(s) in %d area(s).", len(ctx.Editor().Rooms()), len(ctx.Editor().Areas()))
	}
	return false
})

var Charset = Define(Definition{
	Name:        "charset",
	Usage:       "charset [name]",
	Description: "show or change the terminal character set",
}, func(ctx *Context) bool {
	term := ctx.Designer.Terminal
	if term == nil {
		ctx.Warn("This connection has no character set to change.")
		return false
	}
	if ctx.Arg == "" {
		ctx.Reply("Charset: %s. Available: %s.", term.Charset(), strings.Join(console.CharsetNames(), ", "))
		return false
	}
	if err := term.SetCharset(ctx.Arg); err != nil {
		ctx.Warn("%v", err)
		return false
	}
	ctx.Reply("Charset is now %s.", term.Charset())
	return false
})

var Quit = Define(Definition{
	Name:        "quit",
	Aliases:     []string{"logout"},
	Usage:       "quit",
	Description: "disconnect",
}, func(ctx *Context) bool {
	ctx.Reply("Goodbye.\r\n")
	return true
})

// exportDir is where export writes area files.
var exportDir = "data/exports"

var Export = Define(Definition{
	Name:        "export",
	Usage:       "export <name>",
	Description: "write every area and room to an area file on the server",
	Group:       GroupAdmin,
	AdminOnly:   true,
}, func(ctx *Context) bool {
	name := strings.TrimSpace(ctx.Arg)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return ctx.Usage()
	}
	if filepath.Ext(name) != ".json" {
		name += ".json"
	}
	path := filepath.Join(exportDir, name)
	ed := ctx.Editor()
	seed := mapserver.Seed{
		Name:  strings.TrimSuffix(name, ".json"),
		Areas: ed.Areas(),
		Rooms: ed.Rooms(),
	}
	if err := mapserver.WriteSeedFile(path, seed); err != nil {
		ctx.Warn("Export failed: %v", err)
		return false
	}
	ctx.Reply("Exported %d room(s) and %d area(s) to %s.", len(seed.Rooms), len(seed.Areas), path)
	return false
})
