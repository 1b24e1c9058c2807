package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/lockdrop"
	lockdropd "github.com/iov-one/lockdrop/cmd/lockdropd/app"
	"github.com/iov-one/lockdrop/commands"
	"github.com/iov-one/lockdrop/commands/server"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".lockdrop")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("lockdropd")
	fmt.Println("          Proportional token distribution node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("validate  Check genesis files against the application")
	fmt.Println("keys      Print distribution, participant and vault keys")
	fmt.Println("testgen   Write example encodings to a directory")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.lockdrop")`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "lockdrop")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(lockdropd.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(lockdropd.GenerateApp, logger, *varHome, rest)
	case "validate":
		err = server.ValidateGenesis(lockdropd.Initializers(), rest)
	case "keys":
		err = KeysCmd(os.Stdout, rest)
	case "testgen":
		err = commands.TestGenCmd(lockdropd.Examples(), rest)
	case "version":
		fmt.Println(lockdrop.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
