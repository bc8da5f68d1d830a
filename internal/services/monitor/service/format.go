package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"warwatch/internal/services/monitor/domain"
)

// Renderer turns transitions and attacks into chat-ready text.
// Timestamps render in the configured zone; player names are NFC-normalized
// and padded by display width so CJK rosters line up
type Renderer struct {
	tz  *time.Location
	now func() time.Time
}

// NewRenderer builds a renderer for the named IANA zone
func NewRenderer(tzName string) (*Renderer, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("renderer: load zone %q: %w", tzName, err)
	}
	return &Renderer{tz: loc, now: time.Now}, nil
}

// WarMessage renders the announcement for the war state the snapshot is in
func (r *Renderer) WarMessage(snap domain.WarSnapshot) string {
	switch snap.State {
	case domain.WarStatePreparation:
		return r.preparationMessage(snap)
	case domain.WarStateInWar:
		return r.inWarMessage(snap)
	case domain.WarStateEnded:
		return r.endedMessage(snap)
	case domain.WarStateNotInWar:
		return "=== NO ACTIVE WAR ===\n" +
			"There is currently no ongoing or upcoming war.\n" +
			"Stay ready for the next battle!"
	default:
		return fmt.Sprintf("War state changed to %s", snap.State)
	}
}

func (r *Renderer) preparationMessage(snap domain.WarSnapshot) string {
	var b strings.Builder
	b.WriteString("=== WAR PREPARATION ===\n")
	fmt.Fprintf(&b, "Opponent: %s\n", normalizeName(snap.Them.Name))
	fmt.Fprintf(&b, "War Size: %s\n", r.warSize(snap))
	fmt.Fprintf(&b, "Battle Starts: %s\n\n", r.localTime(snap.StartTime))
	b.WriteString("Please set your war bases and plan your attacks!\n")
	fmt.Fprintf(&b, "War starts in %s", r.remaining(snap.StartTime))
	return b.String()
}

func (r *Renderer) inWarMessage(snap domain.WarSnapshot) string {
	var b strings.Builder
	b.WriteString("=== WAR NOTIFICATION ===\n")
	fmt.Fprintf(&b, "Opponent: %s\n", normalizeName(snap.Them.Name))
	fmt.Fprintf(&b, "War Size: %s\n", r.warSize(snap))
	fmt.Fprintf(&b, "End Time: %s\n", r.localTime(snap.EndTime))
	fmt.Fprintf(&b, "Time Remaining: %s\n\n", r.remaining(snap.EndTime))
	b.WriteString("All clan members please complete your attacks!\n")
	b.WriteString("Good luck everyone!")
	return b.String()
}

func (r *Renderer) endedMessage(snap domain.WarSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== WAR AGAINST %s HAS ENDED ===\n", normalizeName(snap.Them.Name))
	fmt.Fprintf(&b, "RESULT: %s\n", Outcome(snap))
	fmt.Fprintf(&b, "Stars: %d vs %d\n", snap.Us.Stars, snap.Them.Stars)
	fmt.Fprintf(&b, "Destruction: %.1f%% vs %.1f%%\n", snap.Us.Destruction, snap.Them.Destruction)

	if top := topAttackers(snap.Us, 3); len(top) > 0 {
		b.WriteString("\n[OUR TOP PLAYERS]\n")
		writeTopList(&b, top)
	}
	if top := topAttackers(snap.Them, 3); len(top) > 0 {
		b.WriteString("\n[TOP ENEMY PLAYERS]\n")
		writeTopList(&b, top)
	}

	b.WriteString("\nCheck the game for full details!")
	return b.String()
}

// MaintenanceMessage renders the maintenance dimension transitions
func (r *Renderer) MaintenanceMessage(active bool) string {
	if active {
		return "Server maintenance has started. War updates pause until it ends."
	}
	return "Server maintenance is over. Monitoring resumed."
}

// RaidMessage renders the raid weekend dimension transitions
func (r *Renderer) RaidMessage(active bool) string {
	if active {
		return "Raid weekend has started! Spend those capital attacks."
	}
	return "Raid weekend has ended. See you next weekend!"
}

// Remark buckets by destruction. The pick is keyed off the attack order so
// repeated renders of the same attack stay identical
var (
	zeroDestructionMsgs = []string{
		"Connection issues? That attack didn't go through.",
		"Oof! 0% - something must've gone wrong.",
		"Maybe a disconnect? Better luck next round!",
		"That looked like an unfinished attack!",
	}
	lowDestructionMsgs = []string{
		"Keep pushing!",
		"Not bad, next one will be better!",
		"We all have those days - GG!",
		"Nice effort, learn and improve!",
	}
	goodDestructionMsgs = []string{
		"Nice hit!",
		"Great work out there!",
		"That was solid!",
		"You're bringing the heat!",
	}
	almostPerfectMsgs = []string{
		"So close to perfection!",
		"That was a beast of an attack!",
		"Massive damage, almost 3-star worthy!",
		"Just a bit more and that base was dust!",
	}
	perfectMsgs = []string{
		"Flawless victory!",
		"100%! Absolute perfection!",
		"That base didn't stand a chance!",
		"A triple! You're unstoppable!",
	}
)

// AttackMessage renders one deduplicated attack announcement
func (r *Renderer) AttackMessage(a domain.MemberAttack) string {
	return fmt.Sprintf("%s got %dstars on %s with %d%% destruction. %s",
		a.AttackerName, a.Stars, a.Key.DefenderName, a.Destruction, remark(a.Destruction, a.Key.Order))
}

func remark(destruction, order int) string {
	var pool []string
	switch {
	case destruction == 0:
		pool = zeroDestructionMsgs
	case destruction < 70:
		pool = lowDestructionMsgs
	case destruction < 95:
		pool = goodDestructionMsgs
	case destruction < 100:
		pool = almostPerfectMsgs
	default:
		pool = perfectMsgs
	}
	if order < 0 {
		order = -order
	}
	return pool[order%len(pool)]
}

// Outcome decides the war result by stars first, total destruction second
func Outcome(snap domain.WarSnapshot) domain.WarOutcome {
	switch {
	case snap.Us.Stars > snap.Them.Stars:
		return domain.WarOutcomeVictory
	case snap.Us.Stars < snap.Them.Stars:
		return domain.WarOutcomeDefeat
	case snap.Us.Destruction > snap.Them.Destruction:
		return domain.WarOutcomeVictory
	case snap.Us.Destruction < snap.Them.Destruction:
		return domain.WarOutcomeDefeat
	default:
		return domain.WarOutcomeDraw
	}
}

type topAttacker struct {
	Name     string
	Stars    int
	Townhall int
}

// topAttackers ranks a side's members that attacked by total stars
func topAttackers(side domain.WarSide, n int) []topAttacker {
	var out []topAttacker
	for _, m := range side.Members {
		if len(m.Attacks) == 0 {
			continue
		}
		total := 0
		for _, a := range m.Attacks {
			total += a.Stars
		}
		out = append(out, topAttacker{Name: normalizeName(m.Name), Stars: total, Townhall: m.Townhall})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stars > out[j].Stars })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func writeTopList(b *strings.Builder, top []topAttacker) {
	widest := 0
	for _, a := range top {
		if w := displayWidth(a.Name); w > widest {
			widest = w
		}
	}
	for i, a := range top {
		fmt.Fprintf(b, "%d. %s: %d stars (TH%d)\n", i+1, padRight(a.Name, widest), a.Stars, a.Townhall)
	}
}

// normalizeName puts player names in NFC so ledger keys and rendered text
// agree on one byte form regardless of how the upstream composed them
func normalizeName(s string) string { return norm.NFC.String(s) }

// displayWidth counts terminal cells, treating East Asian wide and fullwidth
// runes as two
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

func padRight(s string, cells int) string {
	if pad := cells - displayWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func (r *Renderer) warSize(snap domain.WarSnapshot) string {
	if snap.TeamSize == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dv%d", snap.TeamSize, snap.TeamSize)
}

func (r *Renderer) localTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.In(r.tz).Format("2006-01-02 15:04:05")
}

func (r *Renderer) remaining(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	d := t.Sub(r.now()).Truncate(time.Second)
	if d < 0 {
		d = 0
	}
	return d.String()
}
