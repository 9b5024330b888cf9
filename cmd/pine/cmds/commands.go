// Package cmds implements the pine command line interface.
package cmds

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/go-pine/pine/pkg/config"
	"github.com/go-pine/pine/pkg/logflags"
	"github.com/go-pine/pine/pkg/machine"
	"github.com/go-pine/pine/service"
	"github.com/go-pine/pine/service/ipcclient"
	"github.com/go-pine/pine/service/ipcserver"
	"github.com/go-pine/pine/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// network is the endpoint transport, "unix" or "tcp".
	network string
	// addr is the endpoint address.
	addr string
	// ramSize is the size of the demo machine's address space.
	ramSize uint32

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const pineCommandLongDesc = `pine exposes the memory of an emulated machine over a local socket.

A running server answers compact binary requests that read or write fixed
width values of the machine's address space, one connection per exchange.
The serve subcommand runs a flat RAM demo machine; read and write are
one-shot client operations against whatever server is listening.`

// New returns an initialized command tree.
func New() *cobra.Command {
	conf = config.LoadConfig()

	rootCommand = &cobra.Command{
		Use:   "pine",
		Short: "pine is a memory inspection bridge for emulated machines.",
		Long:  pineCommandLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			applyConfig(rootCommand.PersistentFlags(), conf)
			return logflags.Setup(log, logOutput, logDest)
		},
	}

	rootCommand.PersistentFlags().StringVarP(&network, "network", "n", "", "Endpoint transport, unix or tcp (default: platform specific).")
	rootCommand.PersistentFlags().StringVarP(&addr, "addr", "a", "", "Endpoint address: socket path for unix, host:port for tcp.")
	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable debug logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", "Comma separated list of components that should produce debug output (server,client).")
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor.")

	// 'serve' subcommand.
	serveCommand := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo machine's memory over the IPC endpoint.",
		Long: `Serve runs a flat RAM machine behind the IPC server until interrupted.

It exists to try out clients without an emulator: every read and write issued
against the endpoint lands in the demo machine's memory.`,
		Run: serveCmd,
	}
	serveCommand.Flags().Uint32Var(&ramSize, "ram", 1<<20, "Size in bytes of the demo machine's RAM.")
	rootCommand.AddCommand(serveCommand)

	// 'read' subcommand.
	readCommand := &cobra.Command{
		Use:   "read <width> <addr>",
		Short: "Read a value from the machine's memory.",
		Long: `Read a value of the given width (8, 16, 32 or 64 bits) from the machine
served at the endpoint. The address accepts 0x prefixed hexadecimal.`,
		Args: cobra.ExactArgs(2),
		Run:  readCmd,
	}
	rootCommand.AddCommand(readCommand)

	// 'write' subcommand.
	writeCommand := &cobra.Command{
		Use:   "write <width> <addr> <value>",
		Short: "Write a value to the machine's memory.",
		Long: `Write a value of the given width (8, 16, 32 or 64 bits) to the machine
served at the endpoint. Address and value accept 0x prefixed hexadecimal.`,
		Args: cobra.ExactArgs(3),
		Run:  writeCmd,
	}
	rootCommand.AddCommand(writeCommand)

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pine\n%s\n", version.PineVersion)
		},
	}
	rootCommand.AddCommand(versionCommand)

	return rootCommand
}

// applyConfig fills endpoint flags the user left unset from the config file.
func applyConfig(fs *pflag.FlagSet, conf *config.Config) {
	if !fs.Changed("network") && conf.Network != "" {
		network = conf.Network
	}
	if !fs.Changed("addr") && conf.Addr != "" {
		addr = conf.Addr
	}
}

func serveCmd(cmd *cobra.Command, args []string) {
	os.Exit(serve())
}

func serve() int {
	if ramSize == 0 {
		fmt.Fprintln(os.Stderr, "invalid --ram size: must not be zero")
		return 1
	}

	listener, err := service.NewLocalListener(network, addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	mach := machine.NewRAM(ramSize)
	server := ipcserver.NewServer(&service.Config{
		Listener:       listener,
		Machine:        mach,
		MaxRequestSize: intValue(conf.MaxRequestSize),
		MaxReplySize:   intValue(conf.MaxReplySize),
		ReadTimeout:    time.Duration(intValue(conf.ReadTimeoutSeconds)) * time.Second,
	})
	if err := server.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("serving %d bytes of memory on %s\n", mach.Size(), listener.Addr())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	if err := server.Stop(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func readCmd(cmd *cobra.Command, args []string) {
	width, err := parseWidth(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	target, err := parseAddr(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := newClient()
	var v uint64
	switch width {
	case 8:
		var b uint8
		b, err = c.Read8(target)
		v = uint64(b)
	case 16:
		var h uint16
		h, err = c.Read16(target)
		v = uint64(h)
	case 32:
		var w uint32
		w, err = c.Read32(target)
		v = uint64(w)
	case 64:
		v, err = c.Read64(target)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("0x%0*x\n", width/4, v)
}

func writeCmd(cmd *cobra.Command, args []string) {
	width, err := parseWidth(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	target, err := parseAddr(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	v, err := strconv.ParseUint(args[2], 0, width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid value %q: %v\n", args[2], err)
		os.Exit(1)
	}

	c := newClient()
	switch width {
	case 8:
		err = c.Write8(target, uint8(v))
	case 16:
		err = c.Write16(target, uint16(v))
	case 32:
		err = c.Write32(target, uint32(v))
	case 64:
		err = c.Write64(target, v)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() *ipcclient.Client {
	return ipcclient.NewClient(&ipcclient.Config{Network: network, Addr: addr})
}

func parseWidth(s string) (int, error) {
	switch s {
	case "8", "16", "32", "64":
		w, _ := strconv.Atoi(s)
		return w, nil
	}
	return 0, fmt.Errorf("invalid width %q: must be 8, 16, 32 or 64", s)
}

func parseAddr(s string) (uint32, error) {
	a, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %v", s, err)
	}
	return uint32(a), nil
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
