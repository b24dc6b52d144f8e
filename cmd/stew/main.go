// Command stew is a REPL/demo harness exercising the factory, signals, and
// variables: urfave/cli/v3 wires the command-line surface and
// chzyer/readline drives the interactive line editor.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/wudi/stew/arguments"
	"github.com/wudi/stew/invokable"
	"github.com/wudi/stew/library"
	"github.com/wudi/stew/metaclass"
	"github.com/wudi/stew/object"
	"github.com/wudi/stew/signal"
	"github.com/wudi/stew/trace"
	"github.com/wudi/stew/variable"
	"github.com/wudi/stew/version"
)

func main() {
	var logLevel string
	var threads int64

	app := &cli.Command{
		Name:  "stew",
		Usage: "a runtime metaobject and object-extension framework demo shell",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "tracer log level: suppressed|fatal|error|warning|info|debug",
				Value:       "warning",
				Destination: &logLevel,
			},
			&cli.IntFlag{
				Name:        "threads",
				Usage:       "worker pool thread count (0 = no pool)",
				Value:       0,
				Destination: &threads,
			},
			&cli.StringFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "show version",
				Action: func(ctx context.Context, cmd *cli.Command, s string) error {
					fmt.Println(version.Version())
					return nil
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runREPL(parseLevel(logLevel), int(threads))
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "stew: %v\n", err)
		os.Exit(1)
	}
}

func parseLevel(s string) trace.Level {
	switch strings.ToLower(s) {
	case "suppressed":
		return trace.Suppressed
	case "fatal":
		return trace.Fatal
	case "error":
		return trace.Error
	case "info":
		return trace.Info
	case "debug":
		return trace.Debug
	default:
		return trace.Warning
	}
}

// session bundles the demo shell's live state: the Library handle and a
// counter Object built from a registered metaclass, whose "ticked" signal
// is connected to a "logger" slot, so REPL commands have something to
// poke at.
type session struct {
	lib     *library.Library
	counter *object.Object
}

func newSession(lib *library.Library) (*session, error) {
	if err := registerCounterMetaclass(lib); err != nil {
		return nil, err
	}
	obj, err := lib.Factory().Create("Counter", "counter-"+uuid.NewString()[:8])
	if err != nil {
		return nil, err
	}

	tickedExt, ok := obj.FindExtension("ticked")
	if !ok {
		return nil, fmt.Errorf("counter object has no ticked signal")
	}
	sigExt, ok := tickedExt.(*signal.SignalExtension)
	if !ok {
		return nil, fmt.Errorf("ticked extension is not a signal")
	}

	logExt, ok := obj.FindExtension("logger")
	if ok {
		sigExt.Connect(logExt)
	}

	return &session{lib: lib, counter: obj}, nil
}

// registerCounterMetaclass registers a "Counter" Object metaclass carrying
// three extensions: an "increment" Invokable that bumps a counter and
// triggers "ticked", a "value" Invokable that reads it back, and a
// "logger" Invokable slot that writes through the Library's Tracer.
func registerCounterMetaclass(lib *library.Library) error {
	reg := metaclass.Default()
	if _, exists := reg.Find("Counter"); exists {
		return nil
	}

	var count int

	tickedMC, err := metaclass.New("ticked", metaclass.WithExtensionFlag(), metaclass.WithCreator(
		func(name string) (metaclass.Instance, error) {
			return signal.NewSignalExtension(name, signalVoidType()), nil
		}))
	if err != nil {
		return err
	}

	incrementMC, err := metaclass.New("increment", metaclass.WithExtensionFlag(), metaclass.WithCreator(
		func(name string) (metaclass.Instance, error) {
			inv := invokable.New(name, func(host *object.Object) int {
				count++
				if ext, ok := host.FindExtension("ticked"); ok {
					object.Run(ext, arguments.New())
				}
				return count
			})
			return inv, nil
		}))
	if err != nil {
		return err
	}

	valueMC, err := metaclass.New("value", metaclass.WithExtensionFlag(), metaclass.WithCreator(
		func(name string) (metaclass.Instance, error) {
			return invokable.New(name, func() int { return count }), nil
		}))
	if err != nil {
		return err
	}

	loggerMC, err := metaclass.New("logger", metaclass.WithExtensionFlag(), metaclass.WithCreator(
		func(name string) (metaclass.Instance, error) {
			return invokable.New(name, func() {
				lib.Tracer().Log(trace.Info, "logger", "cmd/stew", 0, "ticked (count=%d)", count)
			}), nil
		}))
	if err != nil {
		return err
	}

	objectMC, ok := reg.Find("Object")
	if !ok {
		return fmt.Errorf("base Object metaclass not registered; call library.Initialize first")
	}

	counterMC, err := metaclass.New("Counter",
		metaclass.WithSuper(objectMC),
		metaclass.WithCreator(func(instanceName string) (metaclass.Instance, error) {
			return object.NewObject(instanceName), nil
		}),
		metaclass.WithMetaExtension(tickedMC),
		metaclass.WithMetaExtension(incrementMC),
		metaclass.WithMetaExtension(valueMC),
		metaclass.WithMetaExtension(loggerMC),
	)
	if err != nil {
		return err
	}
	return reg.Register(counterMC)
}

func runREPL(level trace.Level, threads int) error {
	lib, err := library.Initialize(library.Config{
		ThreadPool: library.ThreadPoolConfig{Create: threads > 0, ThreadCount: threads},
		Tracer:     library.TracerConfig{LogLevel: level},
	})
	if err != nil {
		return err
	}
	defer lib.Uninitialize()

	sess, err := newSession(lib)
	if err != nil {
		return err
	}

	rl, err := readline.New("stew> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("stew demo shell. Commands: increment, value, trigger, invoke <ext> [args...], quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		switch cmd {
		case "quit", "exit":
			return nil
		case "increment":
			result, ok := sess.counter.Invoke("increment", arguments.New())
			printResult(result, ok)
		case "value":
			result, ok := sess.counter.Invoke("value", arguments.New())
			printResult(result, ok)
		case "trigger":
			ext, ok := sess.counter.FindExtension("ticked")
			if !ok {
				fmt.Println("no ticked signal")
				continue
			}
			sig := ext.(*signal.SignalExtension)
			fmt.Println(sig.Trigger(arguments.New()))
		case "invoke":
			if len(args) == 0 {
				fmt.Println("usage: invoke <extension> [args...]")
				continue
			}
			name := args[0]
			packed := stringArgs(args[1:])
			result, ok := sess.counter.Invoke(name, packed)
			printResult(result, ok)
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func stringArgs(args []string) arguments.PackagedArguments {
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return arguments.New(vals...)
}

func printResult(v variable.Variable, ok bool) {
	if !ok {
		fmt.Println("<none>")
		return
	}
	if v.Empty() {
		fmt.Println("<void>")
		return
	}
	fmt.Println(v.Raw())
}

func signalVoidType() reflect.Type {
	return reflect.TypeOf(func() {})
}
