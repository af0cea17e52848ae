package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/1broseidon/tiledock/internal/config"
	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/ipc"
	"github.com/1broseidon/tiledock/internal/platform"
)

func runSnap(args []string) int {
	fs := flag.NewFlagSet("snap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	followerEdge := fs.String("edge", "top", "Follower edge: top, bottom, left or right")
	targetEdge := fs.String("target-edge", "bottom", "Target edge, opposite of --edge")
	align := fs.String("align", "", "Alignment: leading, center or trailing (default from config)")
	gap := fs.Int("gap", dock.DefaultGap, "Gap between the edges in pixels")
	onHidden := fs.String("on-hidden", "", "Policy when the target hides: hideFollower, detach, keepBinding")
	onDestroyed := fs.String("on-destroyed", "", "Policy when the target is destroyed: hideAndDetach, detach")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tiledock snap [options] <follower> <target>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Dock follower onto target. The default docks follower's top edge")
		fmt.Fprintln(os.Stderr, "under target's bottom edge.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "snap requires <follower> <target>")
		fs.Usage()
		return 2
	}

	b, err := ipc.NewClient().Snap(ipc.SnapPayload{
		FollowerID:        platform.PanelID(fs.Arg(0)),
		TargetID:          platform.PanelID(fs.Arg(1)),
		FollowerEdge:      *followerEdge,
		TargetEdge:        *targetEdge,
		Alignment:         *align,
		Gap:               *gap,
		OnTargetHidden:    *onHidden,
		OnTargetDestroyed: *onDestroyed,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printBinding(os.Stdout, b)
	return 0
}

// runPanelCommand handles the commands that take one optional panel ID.
func runPanelCommand(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tiledock %s [panel]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without a panel the focused window is used.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}
	id := platform.PanelID(fs.Arg(0))
	client := ipc.NewClient()

	switch name {
	case "detach":
		detached, err := client.Detach(id)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("detached %s\n", detached)
	case "resnap":
		b, err := client.Resnap(id)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		printBinding(os.Stdout, b)
	case "distance":
		d, err := client.SnapDistance(id)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("%s: %.1fpx\n", d.PanelID, d.Distance)
	case "binding":
		b, err := client.GetBinding(id)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		printBinding(os.Stdout, b)
	}
	return 0
}

func printBinding(w io.Writer, b *dock.Binding) {
	fmt.Fprintf(w, "%s.%s -> %s.%s align=%s gap=%d tracking=%s hidden=%s destroyed=%s\n",
		b.FollowerID, b.FollowerEdge, b.TargetID, b.TargetEdge,
		b.Alignment, b.Gap, b.Tracking, b.OnTargetHidden, b.OnTargetDestroyed)
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func writeJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runBindings(args []string) int {
	fs := flag.NewFlagSet("bindings", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().ListBindings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON || !stdoutIsTerminal() {
		return writeJSON(data)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FOLLOWER\tEDGE\tTARGET\tEDGE\tALIGN\tGAP\tTRACKING")
	for _, b := range data.Bindings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			b.FollowerID, b.FollowerEdge, b.TargetID, b.TargetEdge, b.Alignment, b.Gap, b.Tracking)
	}
	tw.Flush()

	if len(data.AutoSnap) > 0 {
		fmt.Println()
		tw = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PANEL\tACCEPTS\tFROM\tTARGETS\tTHRESHOLD\tFEEDBACK")
		for _, c := range data.AutoSnap {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\t%v\n",
				c.PanelID, joinEdges(c.AcceptsSnapOn), joinEdges(c.CanSnapFrom),
				joinIDs(c.Targets), c.Threshold, c.ShowFeedback)
		}
		tw.Flush()
	}
	return 0
}

func joinEdges[E ~string](edges []E) string {
	if len(edges) == 0 {
		return "-"
	}
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = string(e)
	}
	return strings.Join(parts, ",")
}

func joinIDs(ids []platform.PanelID) string {
	if len(ids) == 0 {
		return "any"
	}
	return joinEdges(ids)
}

func runAutoSnap(args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintln(w, "Usage:")
		fmt.Fprintln(w, "  tiledock autosnap set [--accepts EDGES] [--from EDGES] [--targets IDS] [--threshold N] [--feedback] <panel>")
		fmt.Fprintln(w, "  tiledock autosnap disable <panel>")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "EDGES and IDS are comma separated.")
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("autosnap set", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		accepts := fs.String("accepts", "", "Edges other panels may snap onto")
		from := fs.String("from", "", "Edges this panel may snap with when dragged")
		targets := fs.String("targets", "", "Allowed target panels (default any)")
		threshold := fs.Float64("threshold", 0, "Proximity threshold in pixels (default from config)")
		feedback := fs.Bool("feedback", false, "Highlight the candidate edge while dragging")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			usage(os.Stderr)
			return 2
		}
		acceptEdges, err := config.ParseEdges(splitList(*accepts))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		fromEdges, err := config.ParseEdges(splitList(*from))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg := dock.AutoSnapConfig{
			PanelID:       platform.PanelID(fs.Arg(0)),
			AcceptsSnapOn: acceptEdges,
			CanSnapFrom:   fromEdges,
			Threshold:     *threshold,
			ShowFeedback:  *feedback,
		}
		for _, t := range splitList(*targets) {
			cfg.Targets = append(cfg.Targets, platform.PanelID(t))
		}
		if err := ipc.NewClient().SetAutoSnap(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("auto-snap set for %s\n", cfg.PanelID)
		return 0

	case "disable":
		if len(args) != 2 {
			usage(os.Stderr)
			return 2
		}
		if err := ipc.NewClient().DisableAutoSnap(platform.PanelID(args[1])); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("auto-snap disabled for %s\n", args[1])
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown autosnap subcommand: %s\n\n", args[0])
		usage(os.Stderr)
		return 2
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runEvents(args []string) int {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 20, "Number of recent events (0 for all)")
	asJSON := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	events, err := ipc.NewClient().Events(*limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON || !stdoutIsTerminal() {
		return writeJSON(events)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tPANEL\tTARGET\tDETAIL")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Time.Format("15:04:05.00"), e.Kind, e.PanelID, orDash(string(e.TargetID)), eventDetail(e))
	}
	tw.Flush()
	return 0
}

func eventDetail(e dock.Event) string {
	switch {
	case e.Reason != "":
		return string(e.Reason)
	case e.TargetEdge != "":
		return fmt.Sprintf("%s->%s %.1fpx", e.DraggedEdge, e.TargetEdge, e.Distance)
	case e.Distance != 0:
		return fmt.Sprintf("%.1fpx", e.Distance)
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
