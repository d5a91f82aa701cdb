package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/fetchartifact/config"
)

func runConfig(env *environment, args []string) error {
	flagSet := pflag.NewFlagSet("fetch-artifact config", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	local := flagSet.Bool("local", false, "write .fetch-artifact.yaml in the git root instead of the global file")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printConfigHelp(env.stdout, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printConfigHelp(env.stdout, flagSet)
		return nil
	}

	scope := config.ScopeGlobal
	if *local {
		scope = config.ScopeLocal
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printConfigHelp(env.stderr, flagSet)
		return fmt.Errorf("config: missing subcommand")
	}

	switch sub, operands := rest[0], rest[1:]; sub {
	case "set":
		if len(operands) != 2 {
			return fmt.Errorf("config set: want <key> <value>, got %d arguments", len(operands))
		}
		if err := env.loader.Set(scope, operands[0], operands[1]); err != nil {
			return fmt.Errorf("config set: %w", err)
		}
		fmt.Fprintf(env.stdout, "set %s in %s config\n", operands[0], scope)
		return nil

	case "unset":
		if len(operands) != 1 {
			return fmt.Errorf("config unset: want <key>, got %d arguments", len(operands))
		}
		if err := env.loader.Unset(scope, operands[0]); err != nil {
			return fmt.Errorf("config unset: %w", err)
		}
		fmt.Fprintf(env.stdout, "unset %s in %s config\n", operands[0], scope)
		return nil

	case "list":
		listConfig(env.stdout, env.loader.Load(nil))
		return nil

	default:
		return fmt.Errorf("config: unknown subcommand %q", sub)
	}
}

// listConfig prints every resolved key with its source. The token is
// masked.
func listConfig(w io.Writer, v *config.Values) {
	for _, key := range v.Keys() {
		value, src := v.GetWithSource(key)
		if key == config.KeyToken && value != "" {
			value = "********"
		}
		fmt.Fprintf(w, "%s = %s (%s)\n", key, value, src)
	}
}

func printConfigHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Usage:
  fetch-artifact config set [--local] <key> <value>
  fetch-artifact config unset [--local] <key>
  fetch-artifact config list

Keys use underscores, for example max_pages. The token can only be
stored in the global file.

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
