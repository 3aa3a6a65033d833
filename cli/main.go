package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/BertoldVdb/mt-tools/mthal"
	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

type Context struct {
	ctx    context.Context
	log    *logrus.Logger
	config mthal.Config
	settle time.Duration

	session *mthal.Session
}

var CLI struct {
	Port     string `optional help:"Serial port the module is connected to, omit to use the first matching USB adapter."`
	VID      int    `optional type:"hex" help:"USB Vendor ID used to pick a port when --port is omitted."`
	PID      int    `optional type:"hex" help:"USB Product ID used to pick a port when --port is omitted."`
	Baud     int    `optional help:"Boot ROM baud rate (at most 115200)." default:"115200"`
	NMEABaud int    `optional name:"nmea-baud" help:"Baud rate the firmware talks NMEA at, omit to try all standard rates."`
	DTRReset bool   `optional name:"dtr-reset" help:"Enter the boot ROM by toggling DTR instead of sending PMTK180."`

	AgentBaud int    `optional name:"agent-baud" help:"Baud rate to switch to once the download agent runs (230400, 460800 or 921600)."`
	Config    string `optional name:"config" help:"File with link tuning (timeouts, retries, MTU, sector size)."`
	LogLevel  int    `optional help:"Higher values give more output."`

	ListPorts ListPortsCmd `cmd help:"List serial ports."`

	Dump   DumpCmd   `cmd help:"Dump firmware from flash to a file."`
	Update UpdateCmd `cmd help:"Write a firmware file to flash."`
	Info   InfoCmd   `cmd help:"Show the customization settings of a firmware file."`
	Patch  PatchCmd  `cmd help:"Change customization settings of a firmware file."`

	ListRegions MEMIOListRegions  `cmd help:"List available memory regions."`
	Read        MEMIOReadCmd      `cmd help:"Read and dump memory."`
	WriteFile   MEMIOWriteFileCmd `cmd help:"Write file to memory."`
}

/* Commands that only work on files */
var offlineCommands = map[string]bool{
	"list-ports": true,
	"info":       true,
	"patch":      true,
}

func newLogger(level int) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	switch {
	case level <= 0:
		log.SetLevel(logrus.WarnLevel)
	case level == 1:
		log.SetLevel(logrus.InfoLevel)
	case level == 2:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.TraceLevel)
	}
	return log
}

func halLogFunc(log *logrus.Logger) mthal.LogFunc {
	return func(level int, format string, param ...interface{}) {
		switch level {
		case 0:
			log.Warnf(format, param...)
		case 1:
			log.Infof(format, param...)
		case 2:
			log.Debugf(format, param...)
		default:
			log.Tracef(format, param...)
		}
	}
}

func run(args []string) error {
	k, err := kong.New(&CLI,
		kong.NamedMapper("int", intMapper{}),
		kong.NamedMapper("hex", intMapper{base: 16}))
	if err != nil {
		return err
	}

	kctx, err := k.Parse(args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c := &Context{
		ctx: ctx,
		log: newLogger(CLI.LogLevel),
	}

	link, err := loadLinkConfig(CLI.Config)
	if err != nil {
		return err
	}
	c.config = link.hal
	c.settle = link.settle
	c.config.BootBaud = CLI.Baud
	c.config.NMEABaud = CLI.NMEABaud
	c.config.DTRReset = CLI.DTRReset
	c.config.AgentBaud = CLI.AgentBaud
	c.config.LogFunc = halLogFunc(c.log)
	c.config.Progress = newProgress(c.log).Update

	command := strings.Fields(kctx.Command())[0]
	if !offlineCommands[command] {
		if err := c.openSession(); err != nil {
			return err
		}
		defer c.session.Close()
	}

	return kctx.Run(c)
}

func main() {
	err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}
