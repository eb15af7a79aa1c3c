package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"drivebak/internal/adapters/tui/styles"
	"drivebak/internal/domain"
)

const shortIDLen = 8

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.TableBorder).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			return styles.TableCell
		}).
		Headers(headers...)
}

// RenderDrives renders mounted volumes with the serials to configure
func RenderDrives(volumes []domain.Volume) string {
	if len(volumes) == 0 {
		return styles.MutedText.Render("No mounted volumes found")
	}

	t := newTable("ROOT", "LABEL", "SERIAL", "VOLUME ID", "FS", "SIZE", "FREE")
	for _, v := range volumes {
		serial, volumeID := "-", "-"
		if !v.Serial.IsZero() {
			serial = v.Serial.String()
			volumeID = v.Serial.Hex()
		}
		t.Row(
			v.Root,
			orDash(v.Label),
			serial,
			volumeID,
			orDash(v.FSType),
			sizeOrDash(v.Total),
			sizeOrDash(v.Free),
		)
	}
	return t.Render()
}

// RenderRuns renders journaled runs, newest first
func RenderRuns(runs []domain.RunRecord) string {
	if len(runs) == 0 {
		return styles.MutedText.Render("No backup runs recorded")
	}

	t := newTable("ID", "STARTED", "STATUS", "WRITTEN", "VERSIONED", "UNCHANGED", "DUPLICATES", "COPIED", "DESTINATION")
	for _, r := range runs {
		t.Row(
			ShortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			lipgloss.NewStyle().Foreground(styles.StatusColor(string(r.Status))).Render(string(r.Status)),
			strconv.Itoa(r.Stats.FilesWritten),
			strconv.Itoa(r.Stats.FilesVersioned),
			strconv.Itoa(r.Stats.SkippedUnchanged),
			strconv.Itoa(r.Stats.SkippedDuplicate),
			humanize.Bytes(uint64(r.Stats.BytesCopied)),
			r.Destination,
		)
	}
	return t.Render()
}

// RenderRunDetail renders one run followed by the files it wrote
func RenderRunDetail(run *domain.RunRecord, decisions []domain.Decision) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Run " + run.ID))
	b.WriteString("\n")
	lines := [][2]string{
		{"Started", run.StartedAt.Local().Format(time.DateTime)},
		{"Duration", run.Duration.Round(time.Millisecond).String()},
		{"Status", string(run.Status)},
		{"Source", run.Source},
		{"Destination", run.Destination},
		{"Drive", fmt.Sprintf("%s (%s)", orDash(run.VolumeLabel), run.Serial)},
		{"Algorithm", run.Algorithm},
		{"Copied", humanize.Bytes(uint64(run.Stats.BytesCopied))},
	}
	if run.Error != "" {
		lines = append(lines, [2]string{"Error", styles.ErrorMsg.Render(run.Error)})
	}
	for _, l := range lines {
		b.WriteString(labelValue(l[0], l[1]))
		b.WriteString("\n")
	}

	if len(decisions) == 0 {
		b.WriteString(styles.MutedText.Render("No files written"))
		b.WriteString("\n")
		return b.String()
	}

	t := newTable("ACTION", "FILE", "TARGET", "SIZE")
	for _, d := range decisions {
		t.Row(d.Action.String(), d.RelativePath, d.Target, humanize.Bytes(uint64(d.Bytes)))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

func labelValue(label, value string) string {
	return styles.InputLabel.Render(label+":") + " " + value
}

// ShortID truncates a run ID for tables
func ShortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sizeOrDash(n uint64) string {
	if n == 0 {
		return "-"
	}
	return humanize.Bytes(n)
}
