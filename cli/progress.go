package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

func humanBytes(n uint32) string {
	return humanize.IBytes(uint64(n))
}

type progress struct {
	log  *logrus.Logger
	last int
}

func newProgress(log *logrus.Logger) *progress {
	return &progress{log: log, last: -1}
}

/* Update redraws the status line, at most once per percent */
func (p *progress) Update(op string, done int, total int) {
	if total <= 0 {
		return
	}

	percent := done * 100 / total
	if percent == p.last && done != total {
		return
	}
	p.last = percent

	fmt.Fprintf(os.Stderr, "\r%-6s %10s / %-10s %3d%%", op,
		humanize.IBytes(uint64(done)), humanize.IBytes(uint64(total)), percent)
	if done == total {
		fmt.Fprintln(os.Stderr)
		p.last = -1
		p.log.Debugf("%s finished, %d bytes", op, total)
	}
}
