package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"drivebak/internal/domain"
)

func TestReporter_Announce(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	r.Announce(domain.RunSummary{
		Source:  "/home/u/Documents",
		Volume:  domain.Volume{Root: "/media/usb", Label: "BACKUP"},
		Verbose: true,
		DryRun:  false,
	})

	assert.Equal(t,
		"Backing up /home/u/Documents to drive /media/usb(BACKUP) with flags --verbose=true and --dry-run=false\n",
		buf.String())
}

func TestReporter_AnnounceWithoutLabel(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, false).Announce(domain.RunSummary{
		Source: "/src",
		Volume: domain.Volume{Root: "/media/usb", Serial: domain.SerialFromUint32(0x499602D2)},
	})

	assert.Contains(t, buf.String(), "/media/usb(4996-02D2)")
}

func TestReporter_QuietPrintsOnlyStart(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	r.Event(domain.Event{Kind: domain.EventStart, Source: "/src", Target: "/dst/src"})
	r.Event(domain.Event{Kind: domain.EventCompare, Source: "/src/a", Target: "/dst/src/a"})
	r.Event(domain.Event{Kind: domain.EventWrite, Source: "/src/a", Target: "/dst/src/a"})

	assert.Equal(t, "Copying /src -> /dst/src\n", buf.String())
}

func TestReporter_VerboseLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	events := []domain.Event{
		{Kind: domain.EventStart, Source: "/src", Target: "/dst/src"},
		{Kind: domain.EventCompare, Source: "/src/a.txt", Target: "/dst/src/a.txt"},
		{Kind: domain.EventMkdir, Target: "/dst/src"},
		{Kind: domain.EventProbe, Source: "/src/a.txt", Target: "/dst/src/a_v1.txt"},
		{Kind: domain.EventDuplicate, Source: "/src/a.txt", Target: "/dst/src/a_v1.txt"},
		{Kind: domain.EventWrite, Source: "/src/b.txt", Target: "/dst/src/b.txt"},
		{Kind: domain.EventSkip, Source: "/src/fifo"},
	}
	for _, ev := range events {
		r.Event(ev)
	}

	want := []string{
		"Copying /src -> /dst/src",
		"Comparing /src/a.txt -> /dst/src/a.txt",
		"Making directory: /dst/src",
		"New backup location: /dst/src/a_v1.txt",
		"File hashes equal",
		"/src/b.txt -> /dst/src/b.txt",
		"Skipping /src/fifo",
	}
	assert.Equal(t, want, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"))
}

func TestReporter_DryRunMarker(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	r.Event(domain.Event{Kind: domain.EventWrite, Source: "/src/a", Target: "/dst/a", DryRun: true})

	assert.Equal(t, "[dry-run] /src/a -> /dst/a\n", buf.String())
}
